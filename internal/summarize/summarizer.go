// Package summarize produces short article summaries, preferring an LLM and
// falling back to extractive selection when generation is unavailable or
// fails. Summarization never errors: every article leaves with some summary.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"harvest/internal/logger"
)

// TextGenerator is the LLM surface the summarizer depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

const (
	// minSummarizable is the content floor below which the text is short
	// enough to serve as its own summary.
	minSummarizable = 100
	// maxInputChars bounds how much content is sent to the model.
	maxInputChars = 4000
)

const promptTemplate = `Summarize the following article in at most %d words. Write only the summary as plain prose, with no preamble or commentary.

Title: %s

%s`

// Options configures summary length and retry behavior.
type Options struct {
	MaxWords   int
	MinWords   int
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions returns the summarizer defaults.
func DefaultOptions() Options {
	return Options{
		MaxWords:   160,
		MinWords:   60,
		MaxRetries: 2,
		RetryDelay: time.Second,
	}
}

// Summarizer turns article content into a summary string.
type Summarizer struct {
	gen     TextGenerator
	options Options
}

// New creates a summarizer. A nil generator is valid and routes every
// article through the extractive fallback.
func New(gen TextGenerator, options Options) *Summarizer {
	if options.MaxWords <= 0 {
		options.MaxWords = DefaultOptions().MaxWords
	}
	return &Summarizer{gen: gen, options: options}
}

// Summarize returns a summary for the content. Content under the
// summarizable floor is returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, title, content string) string {
	content = strings.TrimSpace(content)
	if len(content) < minSummarizable {
		return content
	}

	input := content
	if len(input) > maxInputChars {
		input = input[:maxInputChars]
	}

	if s.gen != nil {
		if summary, err := s.generate(ctx, title, input); err == nil {
			return summary
		} else {
			logger.Warn("LLM summarization failed, using extractive fallback",
				"title", title, "error", err.Error())
		}
	}

	return ExtractiveSummary(content, s.charBudget())
}

func (s *Summarizer) generate(ctx context.Context, title, input string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, s.options.MaxWords, title, input)

	var summary string
	var err error
	for attempt := 0; attempt <= s.options.MaxRetries; attempt++ {
		summary, err = s.gen.GenerateText(ctx, prompt)
		if err == nil {
			break
		}
		if attempt < s.options.MaxRetries {
			time.Sleep(s.options.RetryDelay * time.Duration(attempt+1))
		}
	}
	if err != nil {
		return "", err
	}

	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	if words := len(strings.Fields(summary)); words > s.options.MaxWords*2 {
		return "", fmt.Errorf("model summary ran long: %d words", words)
	}

	return summary, nil
}

// charBudget approximates the word budget in characters for the extractive
// fallback.
func (s *Summarizer) charBudget() int {
	return s.options.MaxWords * 6
}
