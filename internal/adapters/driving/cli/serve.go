package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikibot/internal/adapters/driving/slackevents"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack events server",
	Long: `Starts the HTTP server that receives Slack event callbacks and
replies with wiki answers and thread summaries.

Messages starting with "wiki/" are answered from the indexed content;
"wiki/summarize" inside a thread posts a summary of that thread.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerer == nil {
		return errors.New("answering not configured: set OpenAI and database credentials")
	}
	if messenger == nil {
		return errors.New("slack not configured: set SLACK_TOKEN")
	}

	addr := serveAddr
	if addr == "" && appConfig != nil {
		addr = appConfig.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := slackevents.NewServer(answerer, messenger, slackevents.Config{Addr: addr})

	cmd.Printf("Listening on %s\n", addr)
	err := server.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
