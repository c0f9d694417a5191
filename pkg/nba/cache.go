package nba

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/nbapredict/internal/logger"
	"github.com/richard-senior/nbapredict/pkg/metrics"
)

// CachingFetcher keeps successfully fetched documents on disk keyed by a hash
// of their URL. Hits never reach the wrapped fetcher, so they cost no rate limit wait
type CachingFetcher struct {
	dir  string
	next Fetcher
}

// NewCachingFetcher caches documents from next under dir
func NewCachingFetcher(dir string, next Fetcher) *CachingFetcher {
	return &CachingFetcher{dir: dir, next: next}
}

// Fetch returns the cached document for url or fetches and caches it
func (c *CachingFetcher) Fetch(url string) (*Document, error) {
	path := c.pathFor(url)
	if body, err := os.ReadFile(path); err == nil {
		doc, err := NewDocument(url, body)
		if err == nil {
			metrics.RecordFetch(metrics.FetchCached)
			logger.Debug("Cache hit", url)
			return doc, nil
		}
		logger.Warn("Discarding unreadable cache entry", path)
	}

	doc, err := c.next.Fetch(url)
	if err != nil {
		return nil, err
	}
	if err := c.store(path, doc.Bytes()); err != nil {
		logger.Warn("Failed to cache document", err)
	}
	return doc, nil
}

func (c *CachingFetcher) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".html")
}

// store writes through a temporary file so a partial write is never read back
func (c *CachingFetcher) store(path string, body []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "fetch-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
