package core

import (
	"fmt"
	"time"
)

// FetchedPage is one document handed to the pipeline by the crawl engine.
type FetchedPage struct {
	URL         string // Final URL after redirects
	Homepage    string // The homepage URL this crawl started from
	StatusCode  int    // HTTP status code
	ContentType string // Content-Type response header
	Body        []byte // Decoded response body
}

// Article is the central record produced by extraction and carried through
// classification, summarization, and persistence.
type Article struct {
	Title         string `json:"title"`          // Article title (may be empty)
	Author        string `json:"author"`         // Byline (may be empty)
	PublishedDate string `json:"published_date"` // ISO YYYY-MM-DD, or empty when unknown
	URL           string `json:"url"`            // Canonical article URL
	Content       string `json:"content"`        // Cleaned body text, non-empty for a valid record
	Summary       string `json:"summary"`        // Filled in by the summarize stage

	// Reason holds the classification verdict explanation. It is kept for
	// logging and auditing only and is never persisted.
	Reason string `json:"-"`
}

// RunStats holds the counters reported at the end of a crawl.
type RunStats struct {
	RunID             string        // Unique identifier for this crawl run
	HomepageURL       string        // The crawled homepage
	ArticlesFound     int           // Candidate links surviving the filter
	ArticlesProcessed int           // Pages fetched and handed to extraction
	ArticlesSaved     int           // Records accepted, summarized, and persisted
	Elapsed           time.Duration // Wall-clock time for the whole run
	StartedAt         time.Time     // When the run began
}

// SuccessRate returns the saved/processed ratio formatted as a percentage,
// "0%" when nothing was processed.
func (s RunStats) SuccessRate() string {
	if s.ArticlesProcessed == 0 {
		return "0%"
	}
	rate := float64(s.ArticlesSaved) / float64(s.ArticlesProcessed) * 100
	return fmt.Sprintf("%.1f%%", rate)
}
