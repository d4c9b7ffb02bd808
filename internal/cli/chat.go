// internal/cli/chat.go
package ragmill

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mwiater/ragmill/internal/appconfig"
	"github.com/mwiater/ragmill/internal/tui"
)

// startChat is swapped out in tests.
var startChat = func(cfg *appconfig.Config) error {
	program := tea.NewProgram(tui.New(newPipeline(cfg)), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long:  `The 'chat' command starts an interactive chat session. Each question is answered from the indexed documents through the retrieval pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startChat(GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
