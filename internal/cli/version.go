// internal/cli/version.go
package ragmill

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time:
// -ldflags "-X github.com/mwiater/ragmill/internal/cli.version=v1.2.3"
var version = "dev"

// versionCmd prints the build version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ragmill version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ragmill %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
