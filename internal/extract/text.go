package extract

import (
	"regexp"
	"strings"
	"time"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	ellipsisRuns   = regexp.MustCompile(`[.]{3,}`)
	dashRuns       = regexp.MustCompile(`[-]{2,}`)
	dateNoise      = regexp.MustCompile(`[^\w\s:/.,-]`)
	bareYear       = regexp.MustCompile(`20\d{2}`)
)

// dateLayouts are attempted in order against a cleaned date string.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// CleanText collapses whitespace runs and normalizes stretched ellipses and
// dashes. The result carries no newlines.
func CleanText(text string) string {
	text = whitespaceRuns.ReplaceAllString(strings.TrimSpace(text), " ")
	text = ellipsisRuns.ReplaceAllString(text, "...")
	text = dashRuns.ReplaceAllString(text, "--")
	return strings.TrimSpace(text)
}

// NormalizeDate maps a raw date string to ISO "2006-01-02" form. Strings with
// only a recognizable year resolve to January 1st of that year. Unparseable
// input yields "".
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(dateNoise.ReplaceAllString(raw, ""))
	if raw == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if year := bareYear.FindString(raw); year != "" {
		return year + "-01-01"
	}

	return ""
}
