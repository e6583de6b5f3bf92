package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Sentinel errors for a failed source load. Either one aborts the refresh.
var (
	ErrUnavailable = errors.New("source unavailable")
	ErrUndecodable = errors.New("source undecodable")
)

// maxBodyBytes bounds a single fetched blob.
const maxBodyBytes = 64 << 20

// Fetcher retrieves the raw bytes behind a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPFetcher fetches blobs over HTTP. Responses carrying an ETag are kept so
// a later 304 Not Modified can reuse the body.
type HTTPFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxBody    int64

	mu    sync.Mutex
	cache map[string]cachedBody
}

type cachedBody struct {
	etag string
	body []byte
}

// NewHTTPFetcher creates an HTTP fetcher with a per-request timeout.
func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxBody:    maxBodyBytes,
		cache:      make(map[string]cachedBody),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}

	cached, hasCached := f.cached(location)
	if hasCached {
		req.Header.Set("If-None-Match", cached.etag)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %w", ErrUnavailable, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && hasCached {
		f.logger.Debug("source not modified", "location", location, "etag", cached.etag)
		return cached.body, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrUnavailable, location, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, location, err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: %s: body exceeds %d bytes", ErrUnavailable, location, f.maxBody)
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		f.store(location, cachedBody{etag: etag, body: body})
	}
	return body, nil
}

func (f *HTTPFetcher) cached(location string) (cachedBody, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cache[location]
	return c, ok
}

func (f *HTTPFetcher) store(location string, c cachedBody) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[location] = c
}

// FileFetcher reads blobs from the local filesystem.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return data, nil
}

// Router dispatches http(s) locations to the HTTP fetcher and everything else
// to the file fetcher.
type Router struct {
	HTTP Fetcher
	File Fetcher
}

// NewRouter creates a Router with the default fetchers.
func NewRouter(timeout time.Duration, logger *slog.Logger) *Router {
	return &Router{
		HTTP: NewHTTPFetcher(timeout, logger),
		File: FileFetcher{},
	}
}

func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	if isRemote(location) {
		return r.HTTP.Fetch(ctx, location)
	}
	return r.File.Fetch(ctx, location)
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
