package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"harvest/internal/core"
	"harvest/internal/logger"
)

const sectionRule = "================================================================================"

// Placeholders used when a record field is missing or empty.
const (
	placeholderTitle   = "Untitled"
	placeholderAuthor  = "Unknown Author"
	placeholderDate    = "Unknown Date"
	placeholderURL     = "No URL"
	placeholderContent = "No content available"
	placeholderSummary = "No summary available"
)

// RenderText renders a record in the flat human-readable form: a header
// block, then CONTENT and SUMMARY sections. Missing values render as their
// placeholders.
func RenderText(article *core.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", orPlaceholder(article.Title, placeholderTitle))
	fmt.Fprintf(&b, "Author: %s\n", orPlaceholder(article.Author, placeholderAuthor))
	fmt.Fprintf(&b, "Published: %s\n", orPlaceholder(article.PublishedDate, placeholderDate))
	fmt.Fprintf(&b, "URL: %s\n", orPlaceholder(article.URL, placeholderURL))

	b.WriteString("\n" + sectionRule + "\nCONTENT\n" + sectionRule + "\n\n")
	b.WriteString(orPlaceholder(article.Content, placeholderContent))
	b.WriteString("\n\n" + sectionRule + "\nSUMMARY\n" + sectionRule + "\n\n")
	b.WriteString(orPlaceholder(article.Summary, placeholderSummary))
	b.WriteString("\n")
	return b.String()
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// ConvertDirectory renders every saved record JSON under inputDir to a .txt
// file of the same stem under outputDir. The run report is skipped.
// Unreadable files are logged and skipped; the count of converted records is
// returned.
func ConvertDirectory(inputDir, outputDir string) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	converted := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == reportFileName {
			continue
		}

		data, err := os.ReadFile(filepath.Join(inputDir, name))
		if err != nil {
			logger.Warn("Skipping unreadable record", "file", name, "error", err.Error())
			continue
		}

		var article core.Article
		if err := json.Unmarshal(data, &article); err != nil {
			logger.Warn("Skipping non-record JSON", "file", name, "error", err.Error())
			continue
		}

		txtName := strings.TrimSuffix(name, ".json") + ".txt"
		outPath := filepath.Join(outputDir, txtName)
		if err := os.WriteFile(outPath, []byte(RenderText(&article)), 0o644); err != nil {
			return converted, fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		converted++
	}

	logger.Info("Converted records to text", "input", inputDir, "output", outputDir, "converted", converted)
	return converted, nil
}
