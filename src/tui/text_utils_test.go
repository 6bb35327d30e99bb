package tui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		ellipsis bool
		want     string
	}{
		{name: "short string unchanged", input: "provision", maxLen: 20, ellipsis: true, want: "provision"},
		{name: "truncated with ellipsis", input: "build-debug-x86_64-unknown-linux-musl", maxLen: 15, ellipsis: true, want: "build-debug-x8…"},
		{name: "truncated without ellipsis", input: "build-debug-x86_64", maxLen: 11, ellipsis: false, want: "build-debug"},
		{name: "zero width", input: "anything", maxLen: 0, ellipsis: true, want: ""},
		{name: "whitespace trimmed", input: "  provision  ", maxLen: 20, ellipsis: false, want: "provision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.input, tt.maxLen, tt.ellipsis, got, tt.want)
			}
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	got := TruncateAndPad("main", 10, false)
	if got != "main      " {
		t.Errorf("TruncateAndPad() = %q", got)
	}
	if VisualWidth(got) != 10 {
		t.Errorf("width = %d, want 10", VisualWidth(got))
	}
}

func TestVisualWidth_WideRunes(t *testing.T) {
	if w := VisualWidth("构建"); w != 4 {
		t.Errorf("VisualWidth(wide) = %d, want 4", w)
	}
}
