// Package extract turns fetched documents into structured article records.
//
// Extraction is a two-stage chain: a readability pass first, then heuristic
// selector-based scraping. Each stage returns nil on failure and the chain
// never panics across its boundary; a nil record is the only failure signal.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"harvest/internal/core"
	"harvest/internal/logger"
)

const (
	// minContent is the smallest cleaned body accepted by either stage.
	minContent = 100
	// minFallbackContent is the stricter floor for the all-paragraphs fallback.
	minFallbackContent = 200
	maxTitleLen        = 200
	maxAuthorLen       = 100
)

// titleSelectors are tried in order by the heuristic stage.
var titleSelectors = []string{
	"h1.article-title",
	"h1.entry-title",
	"h1.post-title",
	"h1.headline",
	`h1[itemprop="headline"]`,
	".article-header h1",
	".entry-header h1",
	".post-header h1",
	"article h1",
	"h1",
}

// authorSelectors are tried in order; a machine-readable content attribute
// wins over visible text.
var authorSelectors = []string{
	`[itemprop="author"]`,
	`[name="author"]`,
	".author",
	".byline",
	".by-author",
	".article-author",
	".post-author",
	".entry-author",
	`[rel="author"]`,
}

// dateSelectors are tried in order; datetime/content attributes win over text.
var dateSelectors = []string{
	"time[datetime]",
	`[itemprop="datePublished"]`,
	`[property="article:published_time"]`,
	`[name="article:published_time"]`,
	".published-date",
	".publish-date",
	".article-date",
	".post-date",
	".entry-date",
}

// contentSelectors are candidate body containers, most specific first.
var contentSelectors = []string{
	"article .entry-content",
	"article .post-content",
	"article .article-content",
	".entry-content",
	".post-content",
	".article-content",
	".article-body",
	".post-body",
	`[itemprop="articleBody"]`,
	"article",
	".content",
	"main",
}

var siteNameSuffix = regexp.MustCompile(`\s*[-|]\s*[^-|]*$`)

// Extract produces an article record from a fetched page, or nil when the
// page is not HTML or neither stage yields enough content.
func Extract(page core.FetchedPage) *core.Article {
	if len(page.Body) == 0 {
		logger.Warn("Empty response body", "url", page.URL)
		return nil
	}

	if !strings.Contains(strings.ToLower(page.ContentType), "html") {
		logger.Warn("Non-HTML content type",
			"url", page.URL, "content_type", page.ContentType)
		return nil
	}

	if article := extractWithReadability(page.Body, page.URL); article != nil {
		logger.Debug("Extracted with readability", "url", page.URL)
		return article
	}

	if article := extractWithSelectors(page.Body, page.URL); article != nil {
		logger.Debug("Extracted with selector heuristics", "url", page.URL)
		return article
	}

	logger.Warn("All extraction stages failed", "url", page.URL)
	return nil
}

// extractWithReadability is the primary stage. It succeeds only when the
// readability body text survives cleaning at minContent characters.
func extractWithReadability(body []byte, pageURL string) *core.Article {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	doc, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return nil
	}

	content := CleanText(doc.TextContent)
	if len(content) < minContent {
		return nil
	}

	article := &core.Article{
		URL:     pageURL,
		Title:   CleanText(doc.Title),
		Author:  CleanText(doc.Byline),
		Content: content,
	}

	if doc.PublishedTime != nil {
		article.PublishedDate = doc.PublishedTime.Format("2006-01-02")
	}

	if article.Title == "" {
		article.Title = titleFromContent(content)
	}

	return article
}

// extractWithSelectors is the fallback stage: strip boilerplate elements and
// walk the ordered selector tables.
func extractWithSelectors(body []byte, pageURL string) *core.Article {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	content := selectContent(doc)
	if content == "" {
		return nil
	}

	return &core.Article{
		URL:           pageURL,
		Title:         selectTitle(doc),
		Author:        selectAuthor(doc),
		PublishedDate: selectDate(doc),
		Content:       content,
	}
}

func selectTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		title := CleanText(doc.Find(selector).First().Text())
		if len(title) > 5 {
			return title
		}
	}

	// Page title with any trailing "| Site Name" suffix stripped.
	title := CleanText(doc.Find("title").First().Text())
	title = strings.TrimSpace(siteNameSuffix.ReplaceAllString(title, ""))
	if len(title) > 5 {
		return title
	}

	return ""
}

func selectAuthor(doc *goquery.Document) string {
	for _, selector := range authorSelectors {
		var author string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			candidate, ok := s.Attr("content")
			if !ok || candidate == "" {
				candidate = s.Text()
			}
			candidate = CleanText(candidate)
			if candidate != "" && len(candidate) < maxAuthorLen {
				author = candidate
				return false
			}
			return true
		})
		if author != "" {
			return author
		}
	}
	return ""
}

func selectDate(doc *goquery.Document) string {
	for _, selector := range dateSelectors {
		var date string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			raw, ok := s.Attr("datetime")
			if !ok || raw == "" {
				raw, ok = s.Attr("content")
				if !ok || raw == "" {
					raw = s.Text()
				}
			}
			if normalized := NormalizeDate(CleanText(raw)); normalized != "" {
				date = normalized
				return false
			}
			return true
		})
		if date != "" {
			return date
		}
	}
	return ""
}

// selectContent concatenates paragraph-like children of the first container
// selector whose combined text clears minContent; otherwise it falls back to
// every page paragraph with the stricter minFallbackContent floor.
func selectContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		var parts []string
		container.Find("p, div, section").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				parts = append(parts, text)
			}
		})

		if len(parts) > 0 {
			content := CleanText(strings.Join(parts, "\n\n"))
			if len(content) > minContent {
				return content
			}
		}
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 30 {
			parts = append(parts, text)
		}
	})

	if len(parts) > 0 {
		content := CleanText(strings.Join(parts, "\n\n"))
		if len(content) > minFallbackContent {
			return content
		}
	}

	return ""
}

// titleFromContent derives a title from the first content line when the
// document itself carries none.
func titleFromContent(content string) string {
	if content == "" {
		return ""
	}

	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)

	if len(firstLine) > 100 {
		if idx := strings.Index(firstLine, ". "); idx > 0 {
			firstLine = firstLine[:idx]
		} else {
			firstLine = firstLine[:100]
		}
	}

	if len(firstLine) > 10 && len(firstLine) < maxTitleLen {
		return firstLine
	}
	return ""
}
