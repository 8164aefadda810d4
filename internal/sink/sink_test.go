package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"harvest/internal/config"
	"harvest/internal/core"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		url   string
		want  string
	}{
		{"simple title", "Council Approves Budget", "https://example.com/a", "council-approves-budget"},
		{"punctuation collapsed", "Hello, World! (Again)", "https://example.com/a", "hello-world-again"},
		{"unicode stripped", "Café réview", "https://example.com/a", "caf-r-view"},
		{"leading trailing trimmed", "  --Edge Case--  ", "https://example.com/a", "edge-case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title, tt.url); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncatesLongTitle(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 40), "https://example.com/some/article")

	want := strings.TrimRight(strings.Repeat("word-", 20), "-")
	if got != want {
		t.Errorf("Slugify(long title) = %q, want %q", got, want)
	}
	if len(got) > 100 {
		t.Errorf("slug length = %d, want <= 100", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

func TestSlugifyHashFallback(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"empty title", ""},
		{"symbols only", "!!! ???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.title, "https://example.com/some/article")
			if !strings.HasPrefix(got, "article-") || len(got) != len("article-")+8 {
				t.Errorf("Slugify(%q) = %q, want article-<8 hex chars>", tt.title, got)
			}
		})
	}

	// The fallback is a function of the URL alone.
	a := Slugify("", "https://example.com/x")
	b := Slugify("!!!", "https://example.com/x")
	if a != b {
		t.Errorf("hash fallback not stable: %q vs %q", a, b)
	}
}

func TestSlugRegistryCollisions(t *testing.T) {
	r := newSlugRegistry()

	if got := r.claim("story"); got != "story" {
		t.Errorf("first claim = %q, want %q", got, "story")
	}
	if got := r.claim("story"); got != "story-1" {
		t.Errorf("second claim = %q, want %q", got, "story-1")
	}
	if got := r.claim("story"); got != "story-2" {
		t.Errorf("third claim = %q, want %q", got, "story-2")
	}
	if got := r.claim("other"); got != "other" {
		t.Errorf("unrelated claim = %q, want %q", got, "other")
	}
}

func sampleArticle(title, url string) *core.Article {
	return &core.Article{
		Title:         title,
		Author:        "Jane Doe",
		PublishedDate: "2024-03-05",
		URL:           url,
		Content:       "First line of body.\nSecond line of body.",
		Summary:       "A short summary.",
	}
}

func TestLocalSinkSaveArticle(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error: %v", err)
	}

	ctx := context.Background()
	if err := s.SaveArticle(ctx, sampleArticle("Budget Vote", "https://example.com/news/budget-vote")); err != nil {
		t.Fatalf("SaveArticle() error: %v", err)
	}
	if err := s.SaveArticle(ctx, sampleArticle("Budget Vote", "https://example.com/news/budget-vote-2")); err != nil {
		t.Fatalf("SaveArticle() duplicate title error: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// JSON files, with the collision suffixed.
	for _, name := range []string{"budget-vote.json", "budget-vote-1.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		var decoded core.Article
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("%s is not valid JSON: %v", name, err)
		}
		if decoded.Title != "Budget Vote" {
			t.Errorf("%s title = %q, want %q", name, decoded.Title, "Budget Vote")
		}
	}

	// CSV: header once, one row per article, newlines flattened.
	f, err := os.Open(filepath.Join(dir, csvFileName))
	if err != nil {
		t.Fatalf("missing CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV unreadable: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("CSV rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("CSV header = %v, want %v", rows[0], csvHeader)
	}
	if strings.Contains(rows[1][4], "\n") {
		t.Errorf("CSV content column carries newlines: %q", rows[1][4])
	}
	if rows[1][4] != "First line of body. Second line of body." {
		t.Errorf("CSV content = %q, want flattened body", rows[1][4])
	}
}

func TestLocalSinkSaveReport(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal() error: %v", err)
	}

	stats := &core.RunStats{
		RunID:             "run-123",
		HomepageURL:       "https://example.com",
		ArticlesFound:     10,
		ArticlesProcessed: 8,
		ArticlesSaved:     6,
		Elapsed:           90 * time.Second,
		StartedAt:         time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	}

	ctx := context.Background()
	if err := s.SaveReport(ctx, stats); err != nil {
		t.Fatalf("SaveReport() error: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, reportFileName))
	if err != nil {
		t.Fatalf("missing report: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded["success_rate"] != "75.0%" {
		t.Errorf("success_rate = %v, want %q", decoded["success_rate"], "75.0%")
	}
	if decoded["articles_found"] != float64(10) {
		t.Errorf("articles_found = %v, want 10", decoded["articles_found"])
	}
	if decoded["run_id"] != "run-123" {
		t.Errorf("run_id = %v, want run-123", decoded["run_id"])
	}
}

func TestRemoteSinkOmitsFailedUploadFromCSV(t *testing.T) {
	var (
		mu   sync.Mutex
		puts = map[string][]byte{}
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			if strings.Contains(r.URL.Path, "denied-story") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			puts[r.URL.Path] = body
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	cfg := config.S3{
		Enabled:   true,
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		Region:    "us-east-1",
		Bucket:    "articles-bucket",
		AccessKey: "test-access",
		SecretKey: "test-secret",
		UseSSL:    false,
	}

	ctx := context.Background()
	s, err := NewRemote(ctx, cfg)
	if err != nil {
		t.Fatalf("NewRemote() error: %v", err)
	}

	if err := s.SaveArticle(ctx, sampleArticle("Good Story", "https://example.com/news/good-story")); err != nil {
		t.Fatalf("SaveArticle() error: %v", err)
	}
	if err := s.SaveArticle(ctx, sampleArticle("Denied Story", "https://example.com/news/denied-story")); err == nil {
		t.Fatal("SaveArticle() succeeded against a denying store, want error")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	var jsonKeys []string
	var csvBody string
	for key, body := range puts {
		switch {
		case strings.HasSuffix(key, ".json"):
			jsonKeys = append(jsonKeys, key)
		case strings.HasSuffix(key, csvFileName):
			csvBody = string(body)
		}
	}

	if len(jsonKeys) != 1 || !strings.Contains(jsonKeys[0], "good-story") {
		t.Errorf("uploaded JSON objects = %v, want only the good story", jsonKeys)
	}
	if csvBody == "" {
		t.Fatal("CSV accumulator was never uploaded")
	}
	if !strings.Contains(csvBody, strings.Join(csvHeader, ",")) {
		t.Errorf("CSV upload missing header: %q", csvBody)
	}
	if !strings.Contains(csvBody, "Good Story") {
		t.Errorf("CSV upload missing the saved record: %q", csvBody)
	}
	if strings.Contains(csvBody, "Denied Story") {
		t.Errorf("CSV upload carries the failed record: %q", csvBody)
	}
}

func TestFlatten(t *testing.T) {
	got := flatten("a\r\nb\nc\rd")
	if got != "a b c d" {
		t.Errorf("flatten() = %q, want %q", got, "a b c d")
	}
}
