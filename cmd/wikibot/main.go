// Command wikibot is the Confluence wiki Q&A bot.
package main

import (
	"github.com/joho/godotenv"

	"github.com/custodia-labs/wikibot/internal/adapters/driving/cli"
)

func main() {
	// Best effort; secrets usually come from the real environment.
	_ = godotenv.Load()

	cli.Execute()
}
