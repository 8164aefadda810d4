package summarize

import "strings"

// maxFallbackSentences caps how many leading sentences the extractive
// fallback stitches together.
const maxFallbackSentences = 5

// ExtractiveSummary builds a summary from the leading sentences of the
// content, staying within maxChars. Sentences of ten characters or fewer are
// skipped. When not even one sentence fits, the content is truncated with an
// ellipsis.
func ExtractiveSummary(content string, maxChars int) string {
	content = strings.TrimSpace(content)
	if content == "" || maxChars <= 0 {
		return ""
	}
	if len(content) <= maxChars {
		return ensureTerminated(content)
	}

	var parts []string
	total := 0
	for _, sentence := range strings.Split(content, ". ") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 10 {
			continue
		}
		// +2 accounts for the ". " separator restored on join.
		if total+len(sentence)+2 > maxChars || len(parts) == maxFallbackSentences {
			break
		}
		parts = append(parts, sentence)
		total += len(sentence) + 2
	}

	if len(parts) == 0 {
		if maxChars <= 3 {
			return content[:maxChars]
		}
		return content[:maxChars-3] + "..."
	}

	return ensureTerminated(strings.Join(parts, ". "))
}

func ensureTerminated(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "."), strings.HasSuffix(s, "!"),
		strings.HasSuffix(s, "?"), strings.HasSuffix(s, "..."):
		return s
	default:
		return s + "."
	}
}
