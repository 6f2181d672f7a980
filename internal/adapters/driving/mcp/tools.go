package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the wiki_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find wiki content"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 3)"`
}

// SearchOutput is the output schema for the wiki_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	PageID     string  `json:"page_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// AskInput is the input schema for the wiki_ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the wiki"`
}

// AskOutput is the output schema for the wiki_ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// defaultTopK matches the retrieval depth used for Slack answers.
const defaultTopK = 3

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "wiki_search",
		Description: "Search the indexed wiki content by semantic similarity",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "wiki_ask",
			Description: "Answer a question using the indexed wiki content",
		}, s.handleAsk)
	}
}

// handleSearch handles the wiki_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	results, err := s.ports.Search.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			PageID:     results[i].PageID,
			Title:      results[i].Title,
			Content:    results[i].Content,
			Similarity: results[i].Similarity,
		}
	}

	return nil, output, nil
}

// handleAsk handles the wiki_ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}
