// Package classify decides whether an extracted record is an actual article
// or a category, tool, policy, or listing page.
//
// Classification is heuristic: a table of definitive rejections runs first,
// then strong and weak signal tables are scored (strong counts double) and a
// content-structure check gates the borderline ladder.
package classify

import (
	"fmt"
	"strings"

	"harvest/internal/core"
)

// record carries the normalized fields the rule tables inspect.
type record struct {
	title   string // lowercased
	content string
	url     string // lowercased
	author  string // trimmed, original case
}

type rule struct {
	name  string
	match func(r record) bool
}

// definitiveRejections exclude a record immediately, before any scoring.
var definitiveRejections = []rule{
	{"privacy or cookie policy", func(r record) bool {
		return strings.Contains(r.title, "policy") &&
			(strings.Contains(r.title, "privacy") || strings.Contains(r.title, "cookie"))
	}},
	{"terms page", func(r record) bool {
		return strings.Contains(r.title, "terms of service") ||
			strings.Contains(r.title, "terms and conditions")
	}},
	{"live score page", func(r record) bool {
		return strings.Contains(r.title, "live score") ||
			strings.Contains(r.title, "live cricket score")
	}},
	{"live updates page", func(r record) bool {
		return strings.Contains(r.title, "live updates")
	}},
	{"live blog", func(r record) bool {
		return strings.Contains(r.title, "live blog")
	}},
	{"calculator tool", func(r record) bool {
		return strings.Contains(r.title, "calculator")
	}},
	{"checker tool", func(r record) bool {
		return strings.Contains(r.title, "checker")
	}},
	{"interactive map", func(r record) bool {
		return strings.Contains(r.title, "interactive map")
	}},
	{"charging stations map", func(r record) bool {
		return strings.Contains(r.title, "charging stations map")
	}},
	{"category landing page", func(r record) bool {
		return strings.Contains(r.title, "latest news on")
	}},
	{"movie listing", func(r record) bool {
		return strings.Contains(r.title, "latest movies") && strings.Contains(r.title, "list of")
	}},
	{"top-20 listing", func(r record) bool {
		return strings.Contains(r.title, "top 20") &&
			(strings.Contains(r.title, "movies") || strings.Contains(r.title, "films"))
	}},
	{"news index page", func(r record) bool {
		return strings.HasSuffix(r.title, " news") &&
			len(r.content) > 2000 && strings.Count(r.content, " - ") > 10
	}},
	{"thin lease deals page", func(r record) bool {
		return strings.Contains(r.title, "lease deals") && len(r.content) < 500
	}},
	{"car section page", func(r record) bool {
		t := strings.TrimSpace(r.title)
		return t == "buying a car" || t == "selling a car" || t == "selling a van"
	}},
	{"category template", func(r record) bool {
		return strings.Contains(r.content, "Other topics in this category")
	}},
	{"too little content", func(r record) bool {
		return len(r.content) < 150
	}},
}

// strongSignals each count two points toward the article score.
var strongSignals = []rule{
	{"has author", func(r record) bool {
		lower := strings.ToLower(r.author)
		return r.author != "" && lower != "null" && lower != "none"
	}},
	{"desk byline", func(r record) bool {
		return strings.Contains(strings.ToLower(r.author), "desk")
	}},
	{"global desk byline", func(r record) bool {
		return strings.Contains(strings.ToLower(r.author), "global")
	}},
	{"full author name", func(r record) bool {
		return len(strings.Fields(r.author)) >= 2
	}},
	{"sentence-rich body", func(r record) bool {
		return len(r.content) > 1000 && strings.Count(r.content, ".") > 25
	}},
	{"very substantial body", func(r record) bool {
		return len(r.content) > 2000
	}},
	{"title:subtitle format", func(r record) bool {
		return strings.Contains(r.title, ": ") && strings.Count(r.title, ":") == 1
	}},
	{"title | source format", func(r record) bool {
		return strings.Count(r.title, "|") == 1 && strings.Contains(r.title, "news")
	}},
	{"how-to title", func(r record) bool {
		return strings.Contains(r.title, "how to") || strings.Contains(head(r.title, 10), "how")
	}},
	{"why title", func(r record) bool {
		return strings.Contains(head(r.title, 20), "why")
	}},
	{"what question title", func(r record) bool {
		return strings.Contains(head(r.title, 20), "what") && strings.Contains(r.title, "?")
	}},
	{"should-i title", func(r record) bool {
		return strings.Contains(r.title, "should i")
	}},
	{"versus piece", func(r record) bool {
		return strings.Contains(r.title, "vs") && len(r.content) > 800
	}},
	{"tips piece", func(r record) bool {
		return strings.Contains(r.title, "tips") && len(r.content) > 800
	}},
	{"guide piece", func(r record) bool {
		return strings.Contains(r.title, "guide") && len(r.content) > 800
	}},
	{"explainer title", func(r record) bool {
		return strings.Contains(r.title, "everything you need to know")
	}},
	{"substantial sale listing", func(r record) bool {
		return strings.Contains(r.title, "for sale") && len(r.content) > 800
	}},
	{"substantial deals page", func(r record) bool {
		return strings.Contains(r.title, "deals") && len(r.content) > 600
	}},
	{"review", func(r record) bool {
		return strings.Contains(r.title, "review") && len(r.content) > 500
	}},
	{"comparison page", func(r record) bool {
		return strings.Contains(r.title, "compare") && len(r.content) > 600
	}},
	{"lease article", func(r record) bool {
		return strings.Contains(r.title, "lease") && len(r.content) > 600
	}},
	{"used cars article", func(r record) bool {
		return strings.Contains(r.title, "used cars") && len(r.content) > 500
	}},
	{"news article", func(r record) bool {
		return strings.Contains(r.title, "news") && len(r.content) > 400
	}},
	{"clean air zone info", func(r record) bool {
		return strings.Contains(r.title, "clean air zone") && len(r.content) > 300
	}},
	{"not a template", func(r record) bool {
		return strings.Count(r.content, "paragraph") == 0 && strings.Count(r.content, "section") < 3
	}},
	{"not a link collection", func(r record) bool {
		return strings.Count(r.content, "http") < 5
	}},
}

// weakSignals each count one point.
var weakSignals = []rule{
	{"medium body", func(r record) bool {
		return len(r.content) > 500
	}},
	{"many sentences", func(r record) bool {
		return strings.Count(r.content, ".") > 10
	}},
	{"non-listing title", func(r record) bool {
		for _, marker := range []string{"list", "top 10", "top 20", "deals"} {
			if strings.Contains(r.title, marker) {
				return false
			}
		}
		return true
	}},
	{"news url with body", func(r record) bool {
		return strings.Contains(r.url, "news") && len(r.content) > 800
	}},
}

// Classify reports whether the record is an actual article, with a
// human-readable reason either way.
func Classify(article *core.Article) (bool, string) {
	r := record{
		title:   strings.ToLower(article.Title),
		content: article.Content,
		url:     strings.ToLower(article.URL),
		author:  strings.TrimSpace(article.Author),
	}

	for _, rejection := range definitiveRejections {
		if rejection.match(r) {
			return false, "Definitive non-article: " + rejection.name
		}
	}

	strongScore := score(strongSignals, r)
	weakScore := score(weakSignals, r)
	totalScore := strongScore*2 + weakScore

	structureOK, structureReason := analyzeStructure(r.content)

	switch {
	case strongScore >= 3:
		return true, fmt.Sprintf("Strong article (score: %d): multiple strong indicators", strongScore)
	case strongScore >= 2 && structureOK:
		return true, fmt.Sprintf("Likely article (score: %d): strong indicators + good content", strongScore)
	case strongScore >= 1 && weakScore >= 3 && structureOK:
		return true, fmt.Sprintf("Probable article (total score: %d): combined indicators", totalScore)
	case r.author != "" && len(r.content) > 1000 && structureOK:
		return true, fmt.Sprintf("Article with author %q and substantial content", head(r.author, 30))
	case !structureOK:
		return false, "Non-article: " + structureReason
	case totalScore < 2:
		return false, fmt.Sprintf("Non-article: low article score (%d)", totalScore)
	default:
		return false, "Non-article: insufficient article indicators"
	}
}

func score(rules []rule, r record) int {
	n := 0
	for _, rule := range rules {
		if rule.match(r) {
			n++
		}
	}
	return n
}

// analyzeStructure checks whether the body reads like prose rather than
// navigation chrome.
func analyzeStructure(content string) (bool, string) {
	if len(content) < 200 {
		return false, "too short"
	}

	if len(strings.Split(content, ".")) < 5 {
		return false, "too few sentences"
	}

	lower := strings.ToLower(content)
	navigationWords := strings.Count(lower, "browse") +
		strings.Count(lower, "select") +
		strings.Count(lower, "filter")
	articleWords := strings.Count(lower, "however") +
		strings.Count(lower, "therefore") +
		strings.Count(lower, "although")

	if navigationWords > articleWords*6 {
		return false, "too much navigation language"
	}

	return true, "good content structure"
}

// head returns the first n runes of s.
func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
