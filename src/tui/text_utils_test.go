package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// assertFits checks that every line of wrapped text fits within width.
func assertFits(t *testing.T, wrapped string, width int) {
	t.Helper()
	for i, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, VisualWidth(line), width, "line %d: %q", i, line)
	}
}

func TestWrap_ShortText(t *testing.T) {
	assert.Equal(t, "hello world", Wrap("hello world", 20))
}

func TestWrap_ExactWidth(t *testing.T) {
	// exactly the length
	assert.Equal(t, "hello world", Wrap("hello world", 11))
}

func TestWrap_MultipleLines(t *testing.T) {
	assertFits(t, Wrap("hello world this is a test", 15), 15)
}

func TestWrap_LongWord(t *testing.T) {
	// A webhook URL has no spaces to break on.
	text := "https://hooks.example.com/api/v1/language-callback?language=unknown&build=0123456789abcdef"
	width := 40

	result := Wrap(text, width)
	assert.Greater(t, len(strings.Split(result, "\n")), 1, "long word should be broken into multiple lines")
	assertFits(t, result, width)

	// Verify all original content is preserved
	assert.Equal(t, text, strings.ReplaceAll(result, "\n", ""))
}

func TestWrap_VeryLongWordShorterThanWidth(t *testing.T) {
	assertFits(t, Wrap("verylongwordthatdoesntfit short", 20), 20)
}

func TestWrap_MultiByteCharacters(t *testing.T) {
	assertFits(t, Wrap("Hello 世界 this is a test with emoji 🎉 and more text", 25), 25)
}

func TestWrap_EmptyString(t *testing.T) {
	assert.Empty(t, Wrap("", 20))
}

func TestWrap_ZeroWidth(t *testing.T) {
	assert.Equal(t, "hello world", Wrap("hello world", 0), "zero width keeps the original text")
}

func TestTruncate_WithEllipsis(t *testing.T) {
	result := Truncate("this is a very long text", 10, true)

	assert.LessOrEqual(t, VisualWidth(result), 10)
	assert.True(t, strings.HasSuffix(result, "..."), "expected ellipsis, got %q", result)
}

func TestTruncate_WithoutEllipsis(t *testing.T) {
	result := Truncate("this is a very long text", 10, false)

	assert.LessOrEqual(t, VisualWidth(result), 10)
	assert.False(t, strings.HasSuffix(result, "..."), "unexpected ellipsis, got %q", result)
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, 10, VisualWidth(TruncateAndPad("short", 10, false)))
}

func TestCleanLogText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"\x1b[31m[ERROR]\x1b[0m Failed - Triggering API", "[ERROR] Failed - Triggering API"},
		{"Response:\tok\r", "Response: ok"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanLogText(tt.input), "CleanLogText(%q)", tt.input)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Empty(t, SplitLines(""))
	assert.Equal(t, []string{"first", "second"}, SplitLines("first\nsecond"))
}
