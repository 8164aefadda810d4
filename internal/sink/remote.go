package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"harvest/internal/config"
	"harvest/internal/core"
	"harvest/internal/logger"
)

// RemoteSink uploads records straight to an S3-compatible bucket. There is no
// local fallback: when the store is unreachable the run fails loudly rather
// than silently writing somewhere else.
//
// JSON objects upload as they arrive; the CSV is accumulated in memory and
// uploaded once at Close.
type RemoteSink struct {
	client *minio.Client
	bucket string
	prefix string

	mu        sync.Mutex
	slugs     *slugRegistry
	csvBuf    bytes.Buffer
	csvWriter *csv.Writer
	uploaded  int
}

// NewRemote connects to the object store, verifies the bucket (creating it
// when missing), and opens a timestamped prefix for this run's objects.
func NewRemote(ctx context.Context, cfg config.S3) (*RemoteSink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created bucket", "bucket", cfg.Bucket)
	}

	base := cfg.Prefix
	if base == "" {
		base = "articles"
	}

	s := &RemoteSink{
		client: client,
		bucket: cfg.Bucket,
		prefix: path.Join(base, time.Now().UTC().Format("20060102-150405")),
		slugs:  newSlugRegistry(),
	}
	s.csvWriter = csv.NewWriter(&s.csvBuf)
	if err := s.csvWriter.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to start CSV accumulator: %w", err)
	}

	logger.Info("Remote sink ready", "bucket", cfg.Bucket, "prefix", s.prefix)
	return s, nil
}

// SaveArticle uploads the record as <prefix>/<slug>.json and buffers its CSV
// row.
func (s *RemoteSink) SaveArticle(ctx context.Context, article *core.Article) error {
	data, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode article %s: %w", article.URL, err)
	}

	s.mu.Lock()
	slug := s.slugs.claim(Slugify(article.Title, article.URL))
	s.mu.Unlock()

	key := path.Join(s.prefix, slug+".json")
	if err := s.upload(ctx, key, data, "application/json"); err != nil {
		return err
	}

	// The CSV row is buffered only once the object is up, so a failed record
	// never appears in the final all_articles.csv.
	s.mu.Lock()
	if err := s.csvWriter.Write(csvRow(article)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to buffer CSV row for %s: %w", article.URL, err)
	}
	s.uploaded++
	s.mu.Unlock()

	logger.Debug("Uploaded article", "key", key, "url", article.URL)
	return nil
}

// SaveReport uploads the end-of-run report JSON.
func (s *RemoteSink) SaveReport(ctx context.Context, stats *core.RunStats) error {
	data, err := json.MarshalIndent(newReport(stats), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return s.upload(ctx, path.Join(s.prefix, reportFileName), data, "application/json")
}

// Close flushes the CSV accumulator and uploads it as a single object.
func (s *RemoteSink) Close(ctx context.Context) error {
	s.mu.Lock()
	s.csvWriter.Flush()
	if err := s.csvWriter.Error(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to flush CSV accumulator: %w", err)
	}
	data := make([]byte, s.csvBuf.Len())
	copy(data, s.csvBuf.Bytes())
	uploaded := s.uploaded
	s.mu.Unlock()

	if err := s.upload(ctx, path.Join(s.prefix, csvFileName), data, "text/csv"); err != nil {
		return err
	}

	logger.Info("Remote sink closed",
		"bucket", s.bucket, "prefix", s.prefix, "articles", uploaded)
	return nil
}

func (s *RemoteSink) upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
