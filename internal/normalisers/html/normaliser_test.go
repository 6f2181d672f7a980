package html

import "testing"

func TestToText(t *testing.T) {
	n := New()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "tags stripped and whitespace collapsed",
			markup: "<p>a  b</p><p>c</p>",
			want:   "a b c",
		},
		{
			name:   "nested elements",
			markup: "<div><h1>Title</h1><p>Some <b>bold</b> text.</p></div>",
			want:   "Title Some bold text.",
		},
		{
			name:   "entities decoded",
			markup: "<p>fish &amp; chips</p>",
			want:   "fish & chips",
		},
		{
			name:   "script and style removed",
			markup: "<p>visible</p><script>var x = 1;</script><style>p{color:red}</style>",
			want:   "visible",
		},
		{
			name:   "newlines and tabs collapsed",
			markup: "<p>line\none</p>\n\t<p>line\ttwo</p>",
			want:   "line one line two",
		},
		{
			name:   "plain text passes through",
			markup: "just words",
			want:   "just words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.ToText(tt.markup); got != tt.want {
				t.Errorf("ToText(%q) = %q, want %q", tt.markup, got, tt.want)
			}
		})
	}
}

func TestToText_Empty(t *testing.T) {
	n := New()

	for _, markup := range []string{"", "   ", "\n\t", "<p></p>", "<div><span></span></div>"} {
		if got := n.ToText(markup); got != "" {
			t.Errorf("ToText(%q) = %q, want empty string", markup, got)
		}
	}
}
