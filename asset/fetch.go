package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sourcegraph/conc/pool"

	"facestudio/errs"
	"facestudio/internal/logx"
)

// maxAssetBytes bounds a single download.
const maxAssetBytes = 8 << 20

// Options configures a Fetcher.
type Options struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
	// MaxRetries counts attempts after the first. Zero means 3.
	MaxRetries  uint
	Concurrency int
	Logger      *slog.Logger
}

// Fetcher downloads and decodes assets, caching them by URL.
// It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	base        *url.URL
	timeout     time.Duration
	maxRetries  uint
	concurrency int
	logger      *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Asset
}

// NewFetcher creates a fetcher.
func NewFetcher(opts Options) (*Fetcher, error) {
	f := &Fetcher{
		client:      opts.Client,
		timeout:     opts.Timeout,
		maxRetries:  opts.MaxRetries,
		concurrency: opts.Concurrency,
		logger:      logx.Or(opts.Logger),
		cache:       make(map[string]*Asset),
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.timeout <= 0 {
		f.timeout = 10 * time.Second
	}
	if f.maxRetries == 0 {
		f.maxRetries = 3
	}
	if f.concurrency <= 0 {
		f.concurrency = 4
	}
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("asset base url: %w", err)
		}
		f.base = u
	}
	return f, nil
}

// Cached returns a previously fetched asset.
func (f *Fetcher) Cached(rawURL string) (*Asset, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.cache[rawURL]
	return a, ok
}

// Put seeds the cache, for assets produced in-process.
func (f *Fetcher) Put(a *Asset) {
	f.mu.Lock()
	f.cache[a.URL] = a
	f.mu.Unlock()
}

// Fetch returns the decoded asset at rawURL. http(s), file and data URLs and
// plain file paths are supported. Transient HTTP failures are retried with
// exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Asset, error) {
	if a, ok := f.Cached(rawURL); ok {
		return a, nil
	}
	data, contentType, err := f.load(ctx, rawURL)
	if err != nil {
		f.logger.Error("asset fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return nil, errs.New("asset.fetch", errs.CodeAsset, errs.WithMessage(rawURL), errs.WithCause(err))
	}
	a, err := Decode(rawURL, contentType, data)
	if err != nil {
		return nil, errs.New("asset.decode", errs.CodeAsset, errs.WithMessage(rawURL), errs.WithCause(err))
	}
	f.Put(a)
	return a, nil
}

// Prefetch fetches urls concurrently to warm the cache. Every url is
// attempted; the returned error joins the individual failures.
func (f *Fetcher) Prefetch(ctx context.Context, urls []string) error {
	seen := make(map[string]struct{}, len(urls))
	p := pool.New().WithMaxGoroutines(f.concurrency).WithContext(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		p.Go(func(ctx context.Context) error {
			_, err := f.Fetch(ctx, u)
			return err
		})
	}
	return p.Wait()
}

func (f *Fetcher) load(ctx context.Context, rawURL string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(rawURL, "data:"):
		return decodeDataURL(rawURL)
	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, "", err
		}
		return readFile(u.Path)
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return f.download(ctx, rawURL)
	}
	if f.base != nil {
		ref, err := url.Parse(rawURL)
		if err != nil {
			return nil, "", err
		}
		return f.download(ctx, f.base.ResolveReference(ref).String())
	}
	return readFile(rawURL)
}

func readFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

type response struct {
	data        []byte
	contentType string
}

func (f *Fetcher) download(ctx context.Context, target string) ([]byte, string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	op := func() (response, error) {
		reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
		if err != nil {
			return response{}, backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return response{}, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return response{}, fmt.Errorf("GET %s: %s", target, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return response{}, backoff.Permanent(fmt.Errorf("GET %s: %s", target, resp.Status))
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
		if err != nil {
			return response{}, err
		}
		if len(data) > maxAssetBytes {
			return response{}, backoff.Permanent(fmt.Errorf("GET %s: asset exceeds %d bytes", target, maxAssetBytes))
		}
		return response{data: data, contentType: resp.Header.Get("Content-Type")}, nil
	}
	notify := func(err error, wait time.Duration) {
		f.logger.Warn("asset fetch retry", slog.String("url", target), slog.Duration("wait", wait), slog.Any("error", err))
	}
	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(f.maxRetries+1),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, "", err
	}
	return resp.data, resp.contentType, nil
}

func decodeDataURL(raw string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data url")
	}
	contentType := header
	if ct, isB64 := strings.CutSuffix(header, ";base64"); isB64 {
		contentType = ct
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("data url: %w", err)
		}
		return data, contentType, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data url: %w", err)
	}
	return []byte(text), contentType, nil
}

// Decode turns raw bytes into an asset, sniffing SVG by content type,
// extension or leading markup.
func Decode(rawURL, contentType string, data []byte) (*Asset, error) {
	if isSVG(rawURL, contentType, data) {
		return ParseSVG(rawURL, data)
	}
	return DecodeRaster(rawURL, data)
}

func isSVG(rawURL, contentType string, data []byte) bool {
	if strings.Contains(contentType, "svg") {
		return true
	}
	lower := strings.ToLower(rawURL)
	if strings.HasSuffix(lower, ".svg") || strings.HasPrefix(lower, "data:image/svg") {
		return true
	}
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}
