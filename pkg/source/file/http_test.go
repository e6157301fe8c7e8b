package file

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
)

var fastRetry = WithBackoff(cache.Backoff{Attempts: 3, Delay: time.Millisecond})

func TestNewHTTPInvalidURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host/data", "not a url", "http://"} {
		if _, err := NewHTTP(u, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("NewHTTP(%q) err = %v", u, err)
		}
	}
}

func TestHTTPSource(t *testing.T) {
	var auth atomic.Value
	fs := http.FileServer(http.Dir(fixtureDir(t)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		fs.ServeHTTP(w, r)
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL+"/", []HTTPOption{WithHeader("Authorization", "Bearer x"), fastRetry})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	dots, err := s.CoverageDots(ctx, "s1", "1", genome.Range{Start: 15, End: 35})
	if err != nil {
		t.Fatal(err)
	}
	if len(dots) != 2 {
		t.Errorf("dots = %v", dots)
	}
	if got := auth.Load(); got != "Bearer x" {
		t.Errorf("Authorization = %v", got)
	}

	if _, err := s.ChromInfo(ctx, "7"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"chrom":"1","size":1000}]`))
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL, []HTTPOption{fastRetry})
	if err != nil {
		t.Fatal(err)
	}
	chroms, err := s.Chromosomes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(chroms) != 1 || calls.Load() != 3 {
		t.Errorf("chroms = %v after %d calls", chroms, calls.Load())
	}
}

func TestHTTPSourceClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewHTTP(srv.URL, []HTTPOption{fastRetry})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Chromosomes(context.Background()); !errors.Is(err, errors.ErrCodeFetchFailed) {
		t.Errorf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
