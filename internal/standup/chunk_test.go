package standup

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPaginateShortTextUntouched(t *testing.T) {
	for _, text := range []string{"", "hello", strings.Repeat("a", MessageLimit)} {
		chunks := Paginate(text, MessageLimit)
		if len(chunks) != 1 {
			t.Fatalf("expected single chunk for %d chars, got %d", len(text), len(chunks))
		}
		if chunks[0] != text {
			t.Fatal("short text must pass through unchanged")
		}
	}
}

func TestPaginateLongText(t *testing.T) {
	text := strings.Repeat("x", 5000)
	chunks := Paginate(text, MessageLimit)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > MessageLimit {
			t.Fatalf("chunk %d is %d runes, over the limit", i, n)
		}
		suffix := fmt.Sprintf("\n\n*Part %d/%d*", i+1, len(chunks))
		if !strings.HasSuffix(chunk, suffix) {
			t.Fatalf("chunk %d missing suffix %q", i, suffix)
		}
		rebuilt.WriteString(strings.TrimSuffix(chunk, suffix))
	}

	if rebuilt.String() != text {
		t.Fatal("stripping part markers must reproduce the original text")
	}
}

func TestPaginateCountsRunesNotBytes(t *testing.T) {
	// Multi-byte characters: 3000 runes is 9000 bytes.
	text := strings.Repeat("✔", 3000)
	chunks := Paginate(text, MessageLimit)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d split inside a rune", i)
		}
		if n := utf8.RuneCountInString(chunk); n > MessageLimit {
			t.Fatalf("chunk %d is %d runes, over the limit", i, n)
		}
	}
}

func TestPaginateSmallLimit(t *testing.T) {
	text := strings.Repeat("b", 250)
	chunks := Paginate(text, 100)

	var rebuilt strings.Builder
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 100 {
			t.Fatalf("chunk %d is %d runes, over the limit", i, n)
		}
		rebuilt.WriteString(strings.TrimSuffix(chunk, fmt.Sprintf("\n\n*Part %d/%d*", i+1, len(chunks))))
	}
	if rebuilt.String() != text {
		t.Fatal("reconstruction failed for custom limit")
	}
}
