// Package crawl drives a full run: harvest homepage links, fetch the
// candidates, extract and buffer records, then classify, summarize, and
// persist the survivors.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"harvest/internal/classify"
	"harvest/internal/config"
	"harvest/internal/core"
	"harvest/internal/extract"
	"harvest/internal/links"
	"harvest/internal/logger"
	"harvest/internal/sink"
	"harvest/internal/summarize"
)

const requestTimeout = 30 * time.Second

// shortContentSummary is the content length under which an unsummarized
// record carries its body as its own summary.
const shortContentSummary = 300

// Pipeline runs one homepage crawl end to end. Fetched records are buffered
// until the crawl completes, then judged and persisted as a batch.
type Pipeline struct {
	cfg        *config.Config
	summarizer *summarize.Summarizer
	out        sink.Sink
}

// New creates a pipeline writing accepted records to out. The summarizer may
// be nil when summarization is disabled.
func New(cfg *config.Config, summarizer *summarize.Summarizer, out sink.Sink) *Pipeline {
	return &Pipeline{cfg: cfg, summarizer: summarizer, out: out}
}

// Run crawls the homepage and returns the run's counters. The error reports
// setup failures; per-page failures only lower the counters. The sink is
// closed on every path, aborted runs included.
func (p *Pipeline) Run(ctx context.Context, rawHomepage string) (*core.RunStats, error) {
	homepage, err := NormalizeHomepageURL(rawHomepage)
	if err != nil {
		p.closeSink(ctx)
		return nil, err
	}

	stats := &core.RunStats{
		RunID:       uuid.NewString(),
		HomepageURL: homepage,
		StartedAt:   time.Now(),
	}

	logger.Info("Starting crawl", "run_id", stats.RunID, "homepage", homepage)

	rawLinks, err := p.harvestHomepageLinks(homepage)
	if err != nil {
		p.closeSink(ctx)
		return nil, err
	}

	candidates := links.SuggestArticleLinks(homepage, rawLinks)
	if limit := p.cfg.Crawl.MaxArticles; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	stats.ArticlesFound = len(candidates)

	if len(candidates) == 0 {
		logger.Warn("No article candidates on homepage", "homepage", homepage)
		stats.Elapsed = time.Since(stats.StartedAt)
		return stats, p.finish(ctx, stats)
	}

	if err := ctx.Err(); err != nil {
		p.closeSink(ctx)
		return nil, err
	}

	records := p.fetchAndExtract(homepage, candidates, stats)
	p.judgeAndPersist(ctx, records, stats)

	stats.Elapsed = time.Since(stats.StartedAt)
	if err := p.finish(ctx, stats); err != nil {
		return stats, err
	}

	logger.Info("Crawl complete",
		"run_id", stats.RunID,
		"found", stats.ArticlesFound,
		"processed", stats.ArticlesProcessed,
		"saved", stats.ArticlesSaved,
		"success_rate", stats.SuccessRate(),
		"elapsed", stats.Elapsed.String())
	return stats, nil
}

// harvestHomepageLinks fetches the homepage once and collects every anchor
// href as written in the document.
func (p *Pipeline) harvestHomepageLinks(homepage string) ([]string, error) {
	collector, err := p.newCollector(homepage, 1)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		hrefs []string
	)
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		mu.Lock()
		hrefs = append(hrefs, href)
		mu.Unlock()
	})

	var visitErr error
	collector.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := collector.Visit(homepage); err != nil {
		return nil, fmt.Errorf("failed to fetch homepage %s: %w", homepage, err)
	}
	collector.Wait()

	if visitErr != nil {
		return nil, fmt.Errorf("failed to fetch homepage %s: %w", homepage, visitErr)
	}

	logger.Info("Harvested homepage links", "homepage", homepage, "links", len(hrefs))
	return hrefs, nil
}

// fetchAndExtract visits every candidate URL concurrently and buffers the
// extracted records until the collector drains.
func (p *Pipeline) fetchAndExtract(homepage string, candidates []string, stats *core.RunStats) []*core.Article {
	collector, err := p.newCollector(homepage, p.cfg.Crawl.Parallelism)
	if err != nil {
		logger.Error("Failed to build article collector", err)
		return nil
	}

	var (
		mu      sync.Mutex
		records []*core.Article
		fetched int
	)

	collector.OnResponse(func(r *colly.Response) {
		page := core.FetchedPage{
			URL:         r.Request.URL.String(),
			Homepage:    homepage,
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
		}

		mu.Lock()
		fetched++
		mu.Unlock()

		article := extract.Extract(page)
		if article == nil {
			return
		}

		mu.Lock()
		records = append(records, article)
		mu.Unlock()
	})

	collector.OnError(func(r *colly.Response, err error) {
		logger.Warn("Fetch failed", "url", r.Request.URL.String(), "error", err.Error())
	})

	for _, candidate := range candidates {
		if err := collector.Visit(candidate); err != nil {
			logger.Warn("Skipping candidate", "url", candidate, "error", err.Error())
		}
	}
	collector.Wait()

	stats.ArticlesProcessed = fetched
	logger.Info("Fetch phase complete", "fetched", fetched, "extracted", len(records))
	return records
}

// judgeAndPersist classifies the buffered records, summarizes the accepted
// ones, and writes them through a bounded worker pool.
func (p *Pipeline) judgeAndPersist(ctx context.Context, records []*core.Article, stats *core.RunStats) {
	var accepted []*core.Article
	for _, article := range records {
		ok, reason := classify.Classify(article)
		article.Reason = reason
		if !ok {
			logger.Debug("Rejected", "url", article.URL, "reason", reason)
			continue
		}
		logger.Debug("Accepted", "url", article.URL, "reason", reason)
		accepted = append(accepted, article)
	}

	for _, article := range accepted {
		article.Summary = p.summaryFor(ctx, article)
	}

	workers := p.cfg.Crawl.Parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(accepted) {
		workers = len(accepted)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		saved int
	)
	queue := make(chan *core.Article)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for article := range queue {
				if err := p.out.SaveArticle(ctx, article); err != nil {
					logger.Error("Failed to persist article", err, "url", article.URL)
					continue
				}
				mu.Lock()
				saved++
				mu.Unlock()
			}
		}()
	}

	for _, article := range accepted {
		queue <- article
	}
	close(queue)
	wg.Wait()

	stats.ArticlesSaved = saved
}

// summaryFor fills the summary slot: the configured summarizer when enabled,
// otherwise short content stands in for itself.
func (p *Pipeline) summaryFor(ctx context.Context, article *core.Article) string {
	if p.cfg.Summary.Enabled && p.summarizer != nil {
		return p.summarizer.Summarize(ctx, article.Title, article.Content)
	}
	if len(article.Content) <= shortContentSummary {
		return article.Content
	}
	return ""
}

// closeSink releases the sink on paths that abort before the report stage,
// flushing whatever it has buffered.
func (p *Pipeline) closeSink(ctx context.Context) {
	if err := p.out.Close(ctx); err != nil {
		logger.Warn("Failed to close sink after aborted run", "error", err.Error())
	}
}

func (p *Pipeline) finish(ctx context.Context, stats *core.RunStats) error {
	if err := p.out.SaveReport(ctx, stats); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	if err := p.out.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}
	return nil
}

// newCollector builds a collector pinned to the homepage's host.
func (p *Pipeline) newCollector(homepage string, parallelism int) (*colly.Collector, error) {
	parsed, err := url.Parse(homepage)
	if err != nil {
		return nil, fmt.Errorf("invalid homepage URL %s: %w", homepage, err)
	}

	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(p.cfg.Crawl.UserAgent),
		colly.AllowedDomains(parsed.Hostname()),
		colly.IgnoreRobotsTxt(),
	)
	collector.SetRequestTimeout(requestTimeout)

	if parallelism < 1 {
		parallelism = 1
	}
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
	}); err != nil {
		return nil, fmt.Errorf("failed to apply rate limit: %w", err)
	}

	return collector, nil
}

// NormalizeHomepageURL validates the starting URL, defaulting a missing
// scheme to https.
func NormalizeHomepageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("homepage URL is required")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid homepage URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("homepage URL %q has no host", raw)
	}

	return parsed.String(), nil
}
