/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"harvest/internal/config"
	"harvest/internal/crawl"
	"harvest/internal/llm"
	"harvest/internal/logger"
	"harvest/internal/sink"
	"harvest/internal/summarize"
)

var (
	cfgFile     string
	maxArticles int
	outputDir   string
	noSummary   bool
	convertOut  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest turns a homepage URL into summarized article records.",
	Long: `Harvest crawls a news or blog homepage, picks out the links that look
like articles, extracts and classifies their content, summarizes the
survivors, and persists them as JSON and CSV locally or to an
S3-compatible bucket.`,
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [homepage-url]",
	Short: "Crawl a homepage and persist its articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCrawl(cmd.Context(), args[0])
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [records-dir]",
	Short: "Render saved article records as flat text files",
	Long: `Convert reads the JSON records a crawl saved and writes one readable
.txt file per record, with Unknown Author / No content available style
placeholders where a field is empty. The run report is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args[0])
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It only needs to happen once.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default .harvest.yaml in the working directory)")

	crawlCmd.Flags().IntVar(&maxArticles, "max-articles", 0,
		"cap on article candidates taken from the homepage (0 = configured default)")
	crawlCmd.Flags().StringVar(&outputDir, "output", "",
		"local output directory (overrides configuration)")
	crawlCmd.Flags().BoolVar(&noSummary, "no-summary", false,
		"skip summarization; only short content carries itself as the summary")

	convertCmd.Flags().StringVar(&convertOut, "output", "converted",
		"directory for the rendered .txt files")

	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(convertCmd)
}

func runConvert(recordsDir string) error {
	logger.Init("info")

	converted, err := sink.ConvertDirectory(recordsDir, convertOut)
	if err != nil {
		return err
	}

	fmt.Printf("Converted %d records to %s\n", converted, convertOut)
	return nil
}

func runCrawl(ctx context.Context, homepage string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger.Init(cfg.App.LogLevel)

	if maxArticles > 0 {
		cfg.Crawl.MaxArticles = maxArticles
	}
	if outputDir != "" {
		cfg.Output.Directory = outputDir
	}
	if noSummary {
		cfg.Summary.Enabled = false
	}

	out, err := buildSink(ctx, cfg)
	if err != nil {
		return err
	}

	summarizer := buildSummarizer(ctx, cfg)

	pipeline := crawl.New(cfg, summarizer, out)
	stats, err := pipeline.Run(ctx, homepage)
	if err != nil {
		return err
	}

	fmt.Printf("Crawled %s\n", stats.HomepageURL)
	fmt.Printf("  candidates: %d\n", stats.ArticlesFound)
	fmt.Printf("  processed:  %d\n", stats.ArticlesProcessed)
	fmt.Printf("  saved:      %d (%s)\n", stats.ArticlesSaved, stats.SuccessRate())
	fmt.Printf("  elapsed:    %s\n", stats.Elapsed.Round(10*time.Millisecond))
	return nil
}

// buildSink picks the remote sink when S3 is configured; there is no local
// fallback for a failed remote setup.
func buildSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if cfg.S3.Enabled {
		return sink.NewRemote(ctx, cfg.S3)
	}
	return sink.NewLocal(cfg.Output.Directory)
}

// buildSummarizer returns nil when summarization is disabled. A missing or
// broken Gemini setup degrades to extractive summaries instead of failing
// the run.
func buildSummarizer(ctx context.Context, cfg *config.Config) *summarize.Summarizer {
	if !cfg.Summary.Enabled {
		return nil
	}

	options := summarize.DefaultOptions()
	options.MaxWords = cfg.Summary.MaxLength
	options.MinWords = cfg.Summary.MinLength

	client, err := llm.NewClient(ctx, cfg.Gemini.Model)
	if err != nil {
		logger.Warn("LLM unavailable, summaries will be extractive", "error", err.Error())
		return summarize.New(nil, options)
	}

	logger.Info("Summarizing with Gemini", "model", client.Model())
	return summarize.New(client, options)
}
