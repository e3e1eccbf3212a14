// Package source opens pipeline inputs from local files, compressed files or
// remote URLs.
package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/sethgrid/pester"
)

// AppName scopes cache directories.
const AppName = "rwdash"

// Fetcher downloads remote inputs into a local cache.
type Fetcher struct {
	Client   *pester.Client
	CacheDir string
	// MaxAge is how long a cached download is reused. Zero disables reuse.
	MaxAge time.Duration
}

// NewFetcher returns a fetcher with exponential backoff that retries on 429
// and caches below the XDG cache home.
func NewFetcher() *Fetcher {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = 3
	client.RetryOnHTTP429 = true
	client.Timeout = 5 * time.Minute
	return &Fetcher{
		Client:   client,
		CacheDir: filepath.Join(xdg.CacheHome, AppName, "downloads"),
		MaxAge:   time.Hour,
	}
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader for location using a default fetcher.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	return NewFetcher().Open(ctx, location)
}

// Open returns a reader for location. Remote files are downloaded first;
// ".gz" and ".zst" suffixes are decompressed transparently. A missing local
// file yields an error wrapping fs.ErrNotExist.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	local := location
	if IsRemote(location) {
		p, err := f.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		local = p
	}
	return openFile(local, compressionName(location))
}

// Fetch downloads url into the cache and returns the local path.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}
	cached := filepath.Join(f.CacheDir, cacheKey(url))
	if fi, err := os.Stat(cached); err == nil && f.MaxAge > 0 && time.Since(fi.ModTime()) < f.MaxAge {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(f.CacheDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing download: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		return "", fmt.Errorf("storing download: %w", err)
	}
	return cached, nil
}

// cacheKey keeps the original extension so compression can be detected.
func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	return hex.EncodeToString(sum[:8]) + "-" + name
}

func compressionName(location string) string {
	loc := strings.SplitN(location, "?", 2)[0]
	switch {
	case strings.HasSuffix(loc, ".gz"):
		return "gzip"
	case strings.HasSuffix(loc, ".zst"):
		return "zstd"
	default:
		return ""
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

func openFile(filename, compression string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	switch compression {
	case "gzip":
		zr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading gzip %s: %w", filename, err)
		}
		return readCloser{Reader: zr, close: func() error {
			zr.Close()
			return f.Close()
		}}, nil
	case "zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading zstd %s: %w", filename, err)
		}
		return readCloser{Reader: zr, close: func() error {
			zr.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}
