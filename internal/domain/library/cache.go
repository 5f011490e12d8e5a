package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxStorySize bounds a downloaded story document.
const maxStorySize = 8 << 20

// StoryCache fetches remote story documents and keeps a copy on disk.
type StoryCache struct {
	cacheDir   string
	maxAge     time.Duration
	httpClient *http.Client
}

// CacheInfo describes the cached copy of one remote story.
type CacheInfo struct {
	URL          string
	Path         string
	Exists       bool
	Size         int64
	LastModified time.Time
	Fresh        bool
	MaxAge       time.Duration
}

func NewStoryCache(cacheDir string, maxAge, timeout time.Duration) *StoryCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logrus.WithError(err).Warn("Failed to create cache directory")
	}

	return &StoryCache{
		cacheDir: cacheDir,
		maxAge:   maxAge,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get returns the story document at url, from the cache while it is fresh.
// When the fetch fails a stale copy is used if there is one.
func (c *StoryCache) Get(ctx context.Context, url string) ([]byte, error) {
	path := c.pathFor(url)
	log := logrus.WithField("url", url)

	if c.isFresh(path) {
		log.Info("Loading story from cache")
		return c.load(path)
	}

	log.Info("Fetching story")
	data, err := c.fetch(ctx, url)
	if err != nil {
		log.WithError(err).Warn("Fetch failed, trying stale cache")
		if cached, cacheErr := c.load(path); cacheErr == nil {
			return cached, nil
		}
		return nil, errors.Wrap(err, "failed to fetch story and no cache available")
	}

	if err := c.save(path, data); err != nil {
		log.WithError(err).Warn("Failed to save to cache")
	}
	return data, nil
}

func (c *StoryCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:8])+".yaml")
}

func (c *StoryCache) isFresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < c.maxAge
}

func (c *StoryCache) load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cache file")
	}
	return data, nil
}

func (c *StoryCache) save(path string, data []byte) error {
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "failed to replace cache file")
	}

	logrus.WithFields(logrus.Fields{
		"bytes": len(data),
		"file":  path,
	}).Info("Saved story to cache")
	return nil
}

func (c *StoryCache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "bad story URL %s", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch URL %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for URL %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStorySize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if len(body) > maxStorySize {
		return nil, fmt.Errorf("story at %s is larger than %d bytes", url, maxStorySize)
	}
	return body, nil
}

// ClearCache removes every cached story.
func (c *StoryCache) ClearCache() error {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "*.yaml"))
	if err != nil {
		return errors.Wrap(err, "failed to list cache")
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to clear cache")
		}
	}
	logrus.WithField("files", len(matches)).Info("Cleared story cache")
	return nil
}

// Info reports on the cached copy of url.
func (c *StoryCache) Info(url string) CacheInfo {
	path := c.pathFor(url)
	info := CacheInfo{URL: url, Path: path, MaxAge: c.maxAge}

	if stat, err := os.Stat(path); err == nil {
		info.Exists = true
		info.Size = stat.Size()
		info.LastModified = stat.ModTime()
		info.Fresh = c.isFresh(path)
	}
	return info
}
