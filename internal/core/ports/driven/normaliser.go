package driven

// Normaliser converts a markup document body into clean plain text.
type Normaliser interface {
	// ToText strips all markup, joins text nodes with single spaces,
	// collapses whitespace runs and trims. Empty or tag-only input
	// yields the empty string; that is not an error, the caller decides
	// to skip.
	ToText(markup string) string
}

// Chunker splits normalised text into overlapping word windows.
type Chunker interface {
	// Split returns the ordered chunk texts for the input. Empty text
	// yields an empty slice; text shorter than the window yields exactly
	// one chunk. Pure and deterministic.
	Split(text string) []string
}
