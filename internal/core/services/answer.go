package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
	"github.com/custodia-labs/wikibot/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.Answerer = (*AnswerService)(nil)
	_ driving.Searcher = (*AnswerService)(nil)
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// answerTemperature keeps replies close to the retrieved context.
const answerTemperature = 0.2

const systemPrompt = `You are a wiki bot that answers questions in Slack message format, based only on the wiki documents provided as Context.
Use Slack markdown to produce a clean, well-organised answer.

- Bold text uses single asterisks, Slack style: *bold*
- Cite page titles with their links as sources, e.g.: Source: *<url|Page title>*
- Use every relevant document to make the answer as detailed as possible.
- Put important code or emphasised passages in code blocks.
- End the answer with the sources.
- Keep Slack markdown formatting throughout.`

// AnswerService answers questions and summarises threads using the
// indexed wiki content and a language model.
type AnswerService struct {
	index     driven.VectorIndex
	llm       driven.LLMService
	messenger driven.Messenger // optional; required only for thread summaries

	wikiBaseURL string
	spaceKey    string
	topK        int
}

// NewAnswerService creates a new answer service.
// The messenger is optional - if nil, thread summarisation is disabled.
func NewAnswerService(
	index driven.VectorIndex,
	llm driven.LLMService,
	messenger driven.Messenger,
	wikiBaseURL, spaceKey string,
) *AnswerService {
	return &AnswerService{
		index:       index,
		llm:         llm,
		messenger:   messenger,
		wikiBaseURL: strings.TrimRight(wikiBaseURL, "/"),
		spaceKey:    spaceKey,
		topK:        DefaultTopK,
	}
}

// Search returns the topK most similar chunks to the query.
func (s *AnswerService) Search(
	ctx context.Context, query string, topK int,
) ([]domain.ScoredChunk, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if topK <= 0 {
		topK = s.topK
	}
	return s.index.Query(ctx, query, topK)
}

// Answer retrieves relevant wiki chunks and asks the language model
// for a grounded reply.
func (s *AnswerService) Answer(ctx context.Context, question string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("answer: %w: empty question", domain.ErrInvalidInput)
	}

	logger.Section("Answer")
	logger.Debug("Question: %q", question)

	chunks, err := s.Search(ctx, question, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(chunks))

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", s.buildContext(chunks), question)},
	}

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: answerTemperature})
	if err != nil {
		return "", fmt.Errorf("llm chat: %w", err)
	}

	return strings.TrimSpace(reply), nil
}

// SummariseThread fetches a conversation thread and summarises it.
func (s *AnswerService) SummariseThread(ctx context.Context, channel, threadTS string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if s.messenger == nil {
		return "", domain.ErrMessengerUnavailable
	}

	messages, err := s.messenger.FetchThread(ctx, channel, threadTS)
	if err != nil {
		return "", fmt.Errorf("fetch thread: %w", err)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("summarise: %w: thread has no messages", domain.ErrEmptyContent)
	}

	var b strings.Builder
	for _, m := range messages {
		user := m.User
		if user == "" {
			user = "bot"
		}
		fmt.Fprintf(&b, "%s: %s\n", user, m.Text)
	}

	summary, err := s.llm.Summarise(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("llm summarise: %w", err)
	}

	return strings.TrimSpace(summary), nil
}

// buildContext renders retrieved chunks as Slack-markdown context.
// The page link is emitted once per page, on its first chunk, so the
// model sees each source exactly once.
func (s *AnswerService) buildContext(chunks []domain.ScoredChunk) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(chunks))

	for _, chunk := range chunks {
		if _, ok := seen[chunk.PageID]; !ok {
			seen[chunk.PageID] = struct{}{}
			title := chunk.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Fprintf(&b, "*<%s|%s>*\n", s.pageURL(chunk.PageID), title)
		}
		fmt.Fprintf(&b, "```%s```\n\n", chunk.Content)
	}

	return b.String()
}

// pageURL builds the wiki link for a page id.
func (s *AnswerService) pageURL(pageID string) string {
	return fmt.Sprintf("%s/spaces/%s/pages/%s", s.wikiBaseURL, s.spaceKey, pageID)
}
