// Package sink persists accepted article records and run reports, either to
// the local filesystem or to an S3-compatible object store. Writes go through
// the Sink interface so the pipeline does not care where records land.
package sink

import (
	"context"
	"strings"

	"harvest/internal/core"
)

// csvHeader is the column order of the accumulated CSV file.
var csvHeader = []string{"title", "url", "author", "published_date", "content", "summary"}

// Sink receives accepted records one at a time and a report at the end of a
// run. Close flushes anything buffered; a sink is unusable afterwards.
// Implementations are safe for concurrent SaveArticle calls.
type Sink interface {
	SaveArticle(ctx context.Context, article *core.Article) error
	SaveReport(ctx context.Context, stats *core.RunStats) error
	Close(ctx context.Context) error
}

// report is the JSON shape of the end-of-run report.
type report struct {
	RunID             string  `json:"run_id"`
	HomepageURL       string  `json:"homepage_url"`
	ArticlesFound     int     `json:"articles_found"`
	ArticlesProcessed int     `json:"articles_processed"`
	ArticlesSaved     int     `json:"articles_saved"`
	SuccessRate       string  `json:"success_rate"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	StartedAt         string  `json:"started_at"`
}

func newReport(stats *core.RunStats) report {
	return report{
		RunID:             stats.RunID,
		HomepageURL:       stats.HomepageURL,
		ArticlesFound:     stats.ArticlesFound,
		ArticlesProcessed: stats.ArticlesProcessed,
		ArticlesSaved:     stats.ArticlesSaved,
		SuccessRate:       stats.SuccessRate(),
		ElapsedSeconds:    stats.Elapsed.Seconds(),
		StartedAt:         stats.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// csvRow renders an article as one CSV record with embedded newlines
// flattened to spaces.
func csvRow(article *core.Article) []string {
	return []string{
		flatten(article.Title),
		article.URL,
		flatten(article.Author),
		article.PublishedDate,
		flatten(article.Content),
		flatten(article.Summary),
	}
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
