// Package links filters raw homepage hrefs down to likely article URLs.
package links

import (
	"net/url"
	"regexp"
	"strings"

	"harvest/internal/logger"
)

// trackingParams are query keys stripped during URL cleaning. Keys are
// matched case-insensitively.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"source":       true,
	"campaign":     true,
	"_ga":          true,
	"mc_cid":       true,
}

// includePatterns mark a path as probably-an-article. They are only
// consulted after every exclude pattern has failed to match.
var includePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/news/`),
	regexp.MustCompile(`/article/`),
	regexp.MustCompile(`/articles/`),
	regexp.MustCompile(`/story/`),
	regexp.MustCompile(`/stories/`),
	regexp.MustCompile(`/blog/`),
	regexp.MustCompile(`/post/`),
	regexp.MustCompile(`/posts/`),
	regexp.MustCompile(`/review/`),
	regexp.MustCompile(`/reviews/`),
	regexp.MustCompile(`/opinion/`),
	regexp.MustCompile(`/opinions/`),
	regexp.MustCompile(`/feature/`),
	regexp.MustCompile(`/features/`),
	regexp.MustCompile(`/analysis/`),
	regexp.MustCompile(`/commentary/`),
	regexp.MustCompile(`/editorial/`),
	regexp.MustCompile(`/20\d{2}/`),          // year in path
	regexp.MustCompile(`/\d{4}/\d{2}/`),      // YYYY/MM
	regexp.MustCompile(`/\d{4}-\d{2}-\d{2}/`), // YYYY-MM-DD
	regexp.MustCompile(`[-_]\w+[-_]\w+[-_]\w+`), // long slug
}

// excludePatterns mark a URL as definitely-not-an-article. They take
// precedence over every include pattern.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/live[/?]`),
	regexp.MustCompile(`/video[/?]`),
	regexp.MustCompile(`/videos[/?]`),
	regexp.MustCompile(`/photo[/?]`),
	regexp.MustCompile(`/photos[/?]`),
	regexp.MustCompile(`/gallery[/?]`),
	regexp.MustCompile(`/galleries[/?]`),
	regexp.MustCompile(`/tag[/?]`),
	regexp.MustCompile(`/tags[/?]`),
	regexp.MustCompile(`/category[/?]`),
	regexp.MustCompile(`/categories[/?]`),
	regexp.MustCompile(`/topic[/?]`),
	regexp.MustCompile(`/topics[/?]`),
	regexp.MustCompile(`/author[/?]`),
	regexp.MustCompile(`/authors[/?]`),
	regexp.MustCompile(`/search[/?]`),
	regexp.MustCompile(`/contact[/?]`),
	regexp.MustCompile(`/about[/?]`),
	regexp.MustCompile(`/privacy[/?]`),
	regexp.MustCompile(`/terms[/?]`),
	regexp.MustCompile(`/subscribe[/?]`),
	regexp.MustCompile(`/newsletter[/?]`),
	regexp.MustCompile(`/rss[/?]`),
	regexp.MustCompile(`/sitemap`),
	regexp.MustCompile(`/api[/?]`),
	regexp.MustCompile(`/feed[/?]`),
	regexp.MustCompile(`\.xml$`),
	regexp.MustCompile(`\.rss$`),
	regexp.MustCompile(`\.json$`),
	regexp.MustCompile(`\.pdf$`),
}

var (
	yearSegment = regexp.MustCompile(`^20\d{2}`)
	dateSegment = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// SuggestArticleLinks resolves raw hrefs against the homepage URL, keeps
// same-host links, strips fragments and tracking parameters, and returns the
// deduplicated set of URLs that look like articles. Malformed links are
// dropped silently; the function never fails as a whole.
func SuggestArticleLinks(homepageURL string, rawLinks []string) []string {
	homepage, err := url.Parse(homepageURL)
	if err != nil {
		logger.Warn("Invalid homepage URL, no candidates", "url", homepageURL)
		return nil
	}
	baseHost := strings.ToLower(homepage.Host)

	seen := make(map[string]bool)
	var candidates []string

	for _, raw := range rawLinks {
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}

		resolved := homepage.ResolveReference(ref)
		if strings.ToLower(resolved.Host) != baseHost {
			continue
		}

		clean := cleanURL(resolved)
		if clean == "" {
			continue
		}

		if looksLikeArticle(clean) && !seen[clean] {
			seen[clean] = true
			candidates = append(candidates, clean)
		}
	}

	logger.Info("Filtered homepage links",
		"total", len(rawLinks), "candidates", len(candidates))
	return candidates
}

// cleanURL removes the fragment and any tracking query parameters.
func cleanURL(u *url.URL) string {
	u.Fragment = ""

	query := u.Query()
	for key := range query {
		if trackingParams[strings.ToLower(key)] {
			query.Del(key)
		}
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// looksLikeArticle applies the exclude and include rule tables, in that
// order, then falls back to slug-shape heuristics on the path.
func looksLikeArticle(rawURL string) bool {
	lowered := strings.ToLower(rawURL)

	for _, pattern := range excludePatterns {
		if pattern.MatchString(lowered) {
			return false
		}
	}

	for _, pattern := range includePatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}

	parsed, err := url.Parse(lowered)
	if err != nil {
		return false
	}
	path := parsed.Path

	// Long paths with date-like or slug-like segments often indicate articles.
	segments := nonEmptySegments(path)
	if len(segments) >= 3 {
		for _, segment := range segments {
			if yearSegment.MatchString(segment) || dateSegment.MatchString(segment) {
				return true
			}
			if len(segment) > 10 && strings.Contains(segment, "-") {
				return true
			}
		}
	}

	// Hyphen-rich long paths are usually slugs.
	if len(path) > 20 && strings.Count(path, "-") >= 2 {
		return true
	}

	return false
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
