package gharchive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// BaseURL is the public archive
const BaseURL = "https://data.gharchive.org"

// Fetcher returns the gzip stream for one hour
type Fetcher interface {
	Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error)
}

// HTTPFetcher fetches directly from the archive
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTPFetcher creates a fetcher with a request timeout, zero means none
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}, BaseURL: BaseURL}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error) {
	base := f.BaseURL
	if base == "" {
		base = BaseURL
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := fmt.Sprintf("%s/%s.json.gz", base, hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("gharchive: unexpected status %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

// DiskCache keeps fetched hours on disk so repeated replays skip the network
// archived hours never change, so there is no revalidation
type DiskCache struct {
	dir   string
	inner Fetcher
}

// NewDiskCache wraps inner with a cache rooted at dir
func NewDiskCache(dir string, inner Fetcher) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("gharchive: cache dir: %w", err)
	}
	return &DiskCache{dir: dir, inner: inner}, nil
}

// Fetch implements Fetcher
func (c *DiskCache) Fetch(ctx context.Context, hour HourRef) (io.ReadCloser, error) {
	path := filepath.Join(c.dir, hour.String()+".json.gz")
	if f, err := os.Open(path); err == nil {
		return f, nil
	}

	body, err := c.inner.Fetch(ctx, hour)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	_, werr := io.Copy(out, body)
	cerr := out.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp)
		if werr != nil {
			return nil, werr
		}
		return nil, cerr
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	return os.Open(path)
}
