package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

// uriScheme is the custom URI scheme for wiki bot resources.
const uriScheme = "wikibot://"

// runListLimit bounds the runs resource payload.
const runListLimit = 20

// runInfo is the JSON shape of one run in the resources.
type runInfo struct {
	ID         string    `json:"id"`
	SpaceKey   string    `json:"space_key"`
	Total      int       `json:"total"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Errored    int       `json:"errored"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the recent ingestion runs.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent wiki ingestion runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for the last run of one space.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{spaceKey}/last",
		Name:        "last-run",
		Description: "The most recent ingestion run for a wiki space",
		MIMEType:    "application/json",
	}, s.handleLastRunResource)
}

// handleRunsResource returns the recent ingestion runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return jsonResource(req.Params.URI, "[]"), nil
	}

	runs, err := s.ports.Runs.ListRuns(ctx, runListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = toRunInfo(&runs[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}

	return jsonResource(req.Params.URI, string(data)), nil
}

// handleLastRunResource returns the most recent run for a space.
func (s *Server) handleLastRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	spaceKey := extractSpaceKey(req.Params.URI)
	if spaceKey == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.Runs.LastRun(ctx, spaceKey)
	if err != nil {
		return nil, fmt.Errorf("getting last run for %s: %w", spaceKey, err)
	}

	info := toRunInfo(run)
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}

	return jsonResource(req.Params.URI, string(data)), nil
}

// toRunInfo converts a report to the resource shape.
func toRunInfo(r *domain.IngestReport) runInfo {
	return runInfo{
		ID:         r.ID,
		SpaceKey:   r.SpaceKey,
		Total:      r.Total,
		Processed:  r.Processed,
		Skipped:    r.Skipped,
		Errored:    r.Errored,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// jsonResource wraps a JSON payload in a resource result.
func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSpaceKey extracts the space key from a URI like
// wikibot://runs/{spaceKey}/last.
func extractSpaceKey(uri string) string {
	const prefix = uriScheme + "runs/"
	const suffix = "/last"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(uri, suffix)
}
