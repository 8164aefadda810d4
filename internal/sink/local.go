package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"harvest/internal/core"
	"harvest/internal/logger"
)

const (
	csvFileName    = "all_articles.csv"
	reportFileName = "scrape_report.json"
)

// LocalSink writes one JSON file per record plus an accumulated CSV under a
// single output directory.
type LocalSink struct {
	dir string

	mu        sync.Mutex
	slugs     *slugRegistry
	csvFile   *os.File
	csvWriter *csv.Writer
	saved     int
}

// NewLocal creates the output directory and opens the CSV accumulator with
// its header row already written.
func NewLocal(dir string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	csvFile, err := os.Create(filepath.Join(dir, csvFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", csvFileName, err)
	}

	writer := csv.NewWriter(csvFile)
	if err := writer.Write(csvHeader); err != nil {
		csvFile.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &LocalSink{
		dir:       dir,
		slugs:     newSlugRegistry(),
		csvFile:   csvFile,
		csvWriter: writer,
	}, nil
}

// SaveArticle writes the record as <slug>.json and appends it to the CSV.
func (s *LocalSink) SaveArticle(_ context.Context, article *core.Article) error {
	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode article %s: %w", article.URL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slug := s.slugs.claim(Slugify(article.Title, article.URL))
	path := filepath.Join(s.dir, slug+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := s.csvWriter.Write(csvRow(article)); err != nil {
		return fmt.Errorf("failed to append CSV row for %s: %w", article.URL, err)
	}

	s.saved++
	logger.Debug("Saved article", "slug", slug, "url", article.URL)
	return nil
}

// SaveReport writes the end-of-run report JSON.
func (s *LocalSink) SaveReport(_ context.Context, stats *core.RunStats) error {
	data, err := json.MarshalIndent(newReport(stats), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(s.dir, reportFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Close flushes and closes the CSV accumulator.
func (s *LocalSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.csvWriter.Flush()
	flushErr := s.csvWriter.Error()
	closeErr := s.csvFile.Close()

	logger.Info("Local sink closed", "directory", s.dir, "articles", s.saved)

	if flushErr != nil {
		return fmt.Errorf("failed to flush CSV: %w", flushErr)
	}
	return closeErr
}
