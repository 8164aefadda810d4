package sink

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// maxSlugLen is the longest title-derived slug; longer slugs are cut there.
const maxSlugLen = 100

var nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a filename-safe slug from the article title, truncated to
// maxSlugLen, or a stable hash of the URL when the title yields nothing
// usable.
func Slugify(title, url string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return hashSlug(url)
	}
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

func hashSlug(url string) string {
	sum := sha1.Sum([]byte(url))
	return "article-" + hex.EncodeToString(sum[:])[:8]
}

// slugRegistry hands out unique slugs within one run, suffixing duplicates
// with -1, -2, and so on.
type slugRegistry struct {
	seen map[string]int
}

func newSlugRegistry() *slugRegistry {
	return &slugRegistry{seen: make(map[string]int)}
}

func (r *slugRegistry) claim(slug string) string {
	n, dup := r.seen[slug]
	r.seen[slug]++
	if !dup {
		return slug
	}
	return slug + "-" + strconv.Itoa(n)
}
