package standup

import (
	"fmt"
)

// MessageLimit is Discord's maximum message length in characters.
const MessageLimit = 2000

// partSuffixReserve is the space held back from every chunk for the
// "\n\n*Part i/n*" marker. Covers part counts up to six digits.
const partSuffixReserve = 24

// Paginate splits text into messages that fit within limit. Output that
// fits in a single message is returned untouched, with no part marker.
// Longer output is split so that each chunk plus its "*Part i/n*" suffix
// stays within the limit; stripping the suffixes and concatenating the
// chunks reproduces the original text exactly. Splits are computed over
// runes since Discord counts characters, not bytes.
func Paginate(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	body := limit - partSuffixReserve
	var chunks []string
	for start := 0; start < len(runes); start += body {
		end := start + body
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	for i := range chunks {
		chunks[i] += fmt.Sprintf("\n\n*Part %d/%d*", i+1, len(chunks))
	}
	return chunks
}
