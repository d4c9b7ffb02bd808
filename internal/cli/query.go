// internal/cli/query.go
package ragmill

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mwiater/ragmill/internal/rag"
)

// queryCmd answers a single question and exits. In unsupervised mode the
// answer streams to stdout as it is generated; in supervised mode only the
// validated answer is printed.
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer one question using the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		pipeline := newPipeline(cfg)

		streamed := false
		answer := pipeline.Pipe(context.Background(), rag.PipeRequest{
			UserMessage: args[0],
			OnDelta: func(delta string) {
				streamed = true
				fmt.Fprint(cmd.OutOrStdout(), delta)
			},
		})
		printAnswer(cmd.OutOrStdout(), answer, streamed)
		return nil
	},
}

// printAnswer finishes the command output. A stream that already reached
// stdout only needs a trailing newline, unless generation fell back to one
// of the fixed failure messages after partial output, which must still be
// shown.
func printAnswer(w io.Writer, answer string, streamed bool) {
	switch {
	case !streamed:
		fmt.Fprintln(w, answer)
	case answer == rag.RequestErrorMessage || answer == rag.ExhaustedMessage:
		fmt.Fprintln(w)
		fmt.Fprintln(w, answer)
	default:
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
