package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the wiki",
	Long: `Retrieves relevant wiki chunks and asks the language model for a
grounded answer. The answer cites the wiki pages it drew from.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerer == nil {
		return errors.New("answering not configured: set OpenAI and database credentials")
	}

	answer, err := answerer.Answer(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}
