// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants search and question the indexed wiki content.
package mcp

import "errors"

// ErrMissingSearcher is returned when the search port is not provided.
var ErrMissingSearcher = errors.New("mcp: searcher is required")
