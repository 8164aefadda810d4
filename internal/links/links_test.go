package links

import (
	"sort"
	"testing"
)

func TestSuggestArticleLinksSameHostOnly(t *testing.T) {
	homepage := "https://example.com"
	raw := []string{
		"https://other.com/news/story-from-elsewhere",
		"https://example.com/news/local-story-here",
		"//cdn.example.net/news/asset-page",
	}

	got := SuggestArticleLinks(homepage, raw)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %v", len(got), got)
	}
	if got[0] != "https://example.com/news/local-story-here" {
		t.Errorf("unexpected candidate: %s", got[0])
	}
}

func TestSuggestArticleLinksExcludeBeatsInclude(t *testing.T) {
	homepage := "https://example.com"

	tests := []struct {
		name string
		link string
	}{
		{"tag page under news", "/news/tag/politics"},
		{"live blog", "/live/news-election-updates"},
		{"xml feed with article path", "/articles/feed.xml"},
		{"video section", "/video/news-clip-of-the-day"},
		{"author index", "/author/jane-doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestArticleLinks(homepage, []string{tt.link})
			if len(got) != 0 {
				t.Errorf("expected %s to be excluded, got %v", tt.link, got)
			}
		})
	}
}

func TestSuggestArticleLinksIncludePatterns(t *testing.T) {
	homepage := "https://example.com"

	tests := []struct {
		name string
		link string
		want bool
	}{
		{"news path", "/news/story-one", true},
		{"year path", "/2024/some-report", true},
		{"yyyy-mm path", "/2024/03/fresh-development", true},
		{"long hyphenated slug", "/why-the-market-moved-this-week", true},
		{"short bare path", "/pricing", false},
		{"tag index", "/tag/politics", false},
		{"category index", "/category/world", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestArticleLinks(homepage, []string{tt.link})
			if (len(got) == 1) != tt.want {
				t.Errorf("link %s: accepted=%v, want %v", tt.link, len(got) == 1, tt.want)
			}
		})
	}
}

func TestSuggestArticleLinksCleaning(t *testing.T) {
	homepage := "https://example.com"
	raw := []string{
		"/news/story-one?utm_source=tw&utm_campaign=spring#section-2",
		"/news/story-one",
		"/news/story-one?ref=homepage",
	}

	got := SuggestArticleLinks(homepage, raw)

	if len(got) != 1 {
		t.Fatalf("expected tracking/fragment variants to deduplicate, got %v", got)
	}
	if got[0] != "https://example.com/news/story-one" {
		t.Errorf("expected cleaned URL, got %s", got[0])
	}
}

func TestSuggestArticleLinksKeepsRealQueryParams(t *testing.T) {
	homepage := "https://example.com"
	got := SuggestArticleLinks(homepage, []string{"/news/story-one?page=2"})

	if len(got) != 1 || got[0] != "https://example.com/news/story-one?page=2" {
		t.Errorf("expected non-tracking query to survive, got %v", got)
	}
}

func TestSuggestArticleLinksIdempotent(t *testing.T) {
	homepage := "https://example.com"
	raw := []string{
		"/news/story-one?utm_source=tw",
		"/2024/05/long-report-on-markets",
		"/blog/a-thing-i-learned-today",
		"/tag/politics",
	}

	first := SuggestArticleLinks(homepage, raw)
	second := SuggestArticleLinks(homepage, first)

	sort.Strings(first)
	sort.Strings(second)

	if len(first) != len(second) {
		t.Fatalf("filter not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("filter not idempotent at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestSuggestArticleLinksMalformedDropped(t *testing.T) {
	homepage := "https://example.com"
	raw := []string{
		"://bad",
		"%zz",
		"/news/good-story-here",
	}

	got := SuggestArticleLinks(homepage, raw)
	if len(got) != 1 {
		t.Fatalf("malformed links should be dropped, pipeline continues: %v", got)
	}
}

func TestSuggestArticleLinksEndToEndSample(t *testing.T) {
	homepage := "https://example.com"
	raw := []string{"/news/story-one", "/tag/politics", "/category/world"}

	got := SuggestArticleLinks(homepage, raw)
	if len(got) != 1 || got[0] != "https://example.com/news/story-one" {
		t.Errorf("expected exactly /news/story-one, got %v", got)
	}
}
