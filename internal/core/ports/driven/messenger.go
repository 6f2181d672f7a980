package driven

import (
	"context"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// Messenger posts messages to the chat platform and reads back
// conversation threads.
type Messenger interface {
	// PostMessage sends a message and returns its platform timestamp.
	PostMessage(ctx context.Context, msg domain.OutgoingMessage) (string, error)

	// FetchThread returns all messages of a thread in posting order.
	FetchThread(ctx context.Context, channel, threadTS string) ([]domain.ThreadMessage, error)
}
