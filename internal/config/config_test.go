package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Crawl.MaxArticles != 40 {
		t.Errorf("MaxArticles = %d, want 40", cfg.Crawl.MaxArticles)
	}
	if cfg.Crawl.Parallelism != 16 {
		t.Errorf("Parallelism = %d, want 16", cfg.Crawl.Parallelism)
	}
	if !cfg.Summary.Enabled {
		t.Error("Summary.Enabled = false, want true")
	}
	if cfg.S3.Enabled {
		t.Error("S3.Enabled = true, want false")
	}
	if err := validate(cfg); err != nil {
		t.Errorf("validate(Default()) error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"s3 without bucket", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Endpoint = "s3.example.com"
		}, true},
		{"s3 without endpoint", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Bucket = "articles"
		}, true},
		{"s3 fully configured", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Endpoint = "s3.example.com"
			c.S3.Bucket = "articles"
		}, false},
		{"summary min above max", func(c *Config) {
			c.Summary.MinLength = 200
			c.Summary.MaxLength = 100
		}, true},
		{"negative max articles", func(c *Config) {
			c.Crawl.MaxArticles = -1
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := validate(cfg); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
