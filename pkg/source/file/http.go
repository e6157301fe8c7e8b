package file

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/errors"
)

const httpTimeout = 10 * time.Second

// HTTPOption configures the HTTP fetcher of NewHTTP.
type HTTPOption func(*httpFetcher)

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) HTTPOption {
	return func(f *httpFetcher) { f.headers[key] = value }
}

// WithHTTPClient replaces the default client with its 10s timeout.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *httpFetcher) { f.client = c }
}

// WithBackoff sets the retry policy for transient failures.
func WithBackoff(b cache.Backoff) HTTPOption {
	return func(f *httpFetcher) { f.backoff = b }
}

// NewHTTP returns a source that fetches the layout below baseURL, for
// example a static file server or object store bucket.
func NewHTTP(baseURL string, httpOpts []HTTPOption, opts ...Option) (*Source, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid data URL %q", baseURL)
	}
	f := &httpFetcher{
		base:    strings.TrimSuffix(u.String(), "/"),
		client:  &http.Client{Timeout: httpTimeout},
		headers: make(map[string]string),
		backoff: cache.DefaultBackoff,
	}
	for _, o := range httpOpts {
		o(f)
	}
	return newSource(f, opts), nil
}

type httpFetcher struct {
	base    string
	client  *http.Client
	headers map[string]string
	backoff cache.Backoff
}

func (f *httpFetcher) fetch(ctx context.Context, rel string) ([]byte, error) {
	var data []byte
	err := cache.RetryWithBackoff(ctx, f.backoff, func() error {
		var err error
		data, err = f.get(ctx, rel)
		return err
	})
	return data, err
}

func (f *httpFetcher) get(ctx context.Context, rel string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.base+"/"+rel, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", rel)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", rel)
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", rel))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, rel); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", rel))
	}
	return data, nil
}

func checkStatus(code int, rel string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", rel)
	case code >= 500 || code == http.StatusTooManyRequests:
		return cache.Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", rel, code))
	default:
		return errors.New(errors.ErrCodeFetchFailed, "%s: status %d", rel, code)
	}
}
