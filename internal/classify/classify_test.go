package classify

import (
	"strings"
	"testing"

	"harvest/internal/core"
)

func proseBody(chars int) string {
	sentence := "However, the committee met again and voted on the measure after hearing from residents. "
	var b strings.Builder
	for b.Len() < chars {
		b.WriteString(sentence)
	}
	return b.String()[:chars]
}

func TestClassifyAcceptsAuthoredArticle(t *testing.T) {
	article := &core.Article{
		Title:   "Budget Vote: Council Approves Plan",
		URL:     "https://example.com/news/budget-vote",
		Author:  "Jane Doe",
		Content: proseBody(2500),
	}

	ok, reason := Classify(article)
	if !ok {
		t.Fatalf("Classify() rejected authored article: %s", reason)
	}
	if !strings.Contains(reason, "Strong article") {
		t.Errorf("reason = %q, want strong-article acceptance", reason)
	}
}

func TestClassifyDefinitiveRejections(t *testing.T) {
	tests := []struct {
		name    string
		article *core.Article
	}{
		{"privacy policy", &core.Article{
			Title:   "Privacy Policy",
			Content: proseBody(1200),
		}},
		{"cookie policy", &core.Article{
			Title:   "Cookie Policy",
			Content: proseBody(1200),
		}},
		{"terms page", &core.Article{
			Title:   "Terms of Service",
			Content: proseBody(1200),
		}},
		{"live updates", &core.Article{
			Title:   "Election Live Updates",
			Content: proseBody(3000),
		}},
		{"calculator", &core.Article{
			Title:   "Loan Calculator",
			Content: proseBody(1200),
		}},
		{"empty content", &core.Article{
			Title:   "A Real Looking Headline",
			Content: "",
		}},
		{"short content", &core.Article{
			Title:   "A Real Looking Headline",
			Author:  "Jane Doe",
			Content: proseBody(149),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Classify(tt.article)
			if ok {
				t.Fatalf("Classify() accepted %s", tt.name)
			}
			if !strings.HasPrefix(reason, "Definitive non-article:") {
				t.Errorf("reason = %q, want definitive rejection", reason)
			}
		})
	}
}

func TestClassifyRejectsNavigationHeavyPage(t *testing.T) {
	body := strings.Repeat("Browse the catalog. Select a model. Filter by price. ", 8)
	article := &core.Article{
		Title:   "Cars",
		URL:     "https://example.com/cars",
		Content: body,
	}

	ok, reason := Classify(article)
	if ok {
		t.Fatalf("Classify() accepted navigation page: %s", reason)
	}
	if !strings.Contains(reason, "navigation language") {
		t.Errorf("reason = %q, want navigation-language rejection", reason)
	}
}

func TestClassifyRejectsLowScore(t *testing.T) {
	// A body that defeats the template and link-collection signals and
	// carries nothing else article-like.
	body := "See paragraph one. http http http http http. More. Words. Here. " +
		strings.Repeat("Filler text without markers. ", 7)
	article := &core.Article{
		Title:   "Misc",
		URL:     "https://example.com/misc",
		Content: body,
	}

	ok, reason := Classify(article)
	if ok {
		t.Fatalf("Classify() accepted low-score page: %s", reason)
	}
	if !strings.Contains(reason, "Non-article") {
		t.Errorf("reason = %q, want non-article rejection", reason)
	}
}

func TestClassifyAuthorWithSubstantialContent(t *testing.T) {
	// Defeat the automatic strong and weak signals so only the author path
	// applies: few sentences, a listing word in the title, template markers.
	sentence := "However the committee deliberated at length about the paragraph structure " +
		"of the new bylaw without reaching any firm conclusion on the matter. "
	body := "http http http http http " + strings.Repeat(sentence, 9)
	article := &core.Article{
		Title:   "Reading list notes",
		URL:     "https://example.com/field-notes",
		Author:  "Sam",
		Content: body,
	}

	ok, reason := Classify(article)
	if !ok {
		t.Fatalf("Classify() rejected authored long-form page: %s", reason)
	}
	if !strings.Contains(reason, "author") {
		t.Errorf("reason = %q, want author-path acceptance", reason)
	}
}

func TestAnalyzeStructure(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantOK  bool
	}{
		{"good prose", proseBody(600), true},
		{"too short", proseBody(150), false},
		{"too few sentences", strings.Repeat("no periods here ", 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := analyzeStructure(tt.content)
			if ok != tt.wantOK {
				t.Errorf("analyzeStructure() = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}
