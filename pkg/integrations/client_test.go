package integrations

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/partstack/partstack/pkg/cache"
	"github.com/partstack/partstack/pkg/errors"
	"github.com/partstack/partstack/pkg/httputil"
)

func TestGetJSONRetriesServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	defer c.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.GetJSON(context.Background(), srv.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (one retry after 502)", hits.Load())
	}
}

func TestGetJSONNotFoundNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Options{})
	defer c.Close()

	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1 (404 must not retry)", hits.Load())
	}
}

func TestPostJSONCheckedRetriesEnvelope(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write([]byte(`{"code":500}`))
			return
		}
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	c := NewClient(Options{})
	defer c.Close()

	var out struct {
		Code int `json:"code"`
	}
	check := func() error {
		if out.Code != 200 {
			return httputil.Retryable(errors.New(errors.ErrCodeAPIError, "envelope code %d", out.Code))
		}
		return nil
	}
	if err := c.PostJSONChecked(context.Background(), srv.URL, map[string]any{}, nil, &out, check); err != nil {
		t.Fatalf("PostJSONChecked: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (error envelope in a 200 retries)", hits.Load())
	}
}

func TestCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"name":"LM358"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Cache: cache.NewMemoryCache(16), CachePrefix: "test:"})
	defer c.Close()

	ctx := context.Background()
	for range 3 {
		var out struct {
			Name string `json:"name"`
		}
		err := c.Cached(ctx, "lm358", &out, func() error {
			return c.GetJSON(ctx, srv.URL, nil, &out)
		})
		if err != nil {
			t.Fatalf("Cached: %v", err)
		}
		if out.Name != "LM358" {
			t.Fatalf("Name = %q", out.Name)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1 (second and third read from cache)", hits.Load())
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      errors.Code
		retryable bool
	}{
		{http.StatusOK, "", false},
		{http.StatusNotFound, errors.ErrCodeNotFound, false},
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized, false},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimited, true},
		{http.StatusInternalServerError, errors.ErrCodeNetwork, true},
		{http.StatusBadRequest, errors.ErrCodeAPIError, false},
	}
	for _, tt := range tests {
		err := checkStatus(tt.status, "")
		if tt.code == "" {
			if err != nil {
				t.Errorf("checkStatus(%d) = %v, want nil", tt.status, err)
			}
			continue
		}
		if !errors.Is(err, tt.code) {
			t.Errorf("checkStatus(%d) = %v, want code %s", tt.status, err, tt.code)
		}
		if got := httputil.IsRetryable(err); got != tt.retryable {
			t.Errorf("checkStatus(%d) retryable = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestCheckStatusRetryAfter(t *testing.T) {
	err := checkStatus(http.StatusTooManyRequests, "30")
	var rl *errors.RateLimitedError
	if !stderrors.As(err, &rl) {
		t.Fatalf("checkStatus(429) = %v, want RateLimitedError in chain", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}

	// A missing or non-numeric header leaves no hint.
	err = checkStatus(http.StatusTooManyRequests, "")
	if !stderrors.As(err, &rl) || rl.RetryAfter != 0 {
		t.Errorf("checkStatus(429, no header) = %v, want RetryAfter 0", err)
	}
}

func TestGetJSONTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: 20 * time.Millisecond})
	defer c.Close()

	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Fatalf("err = %v, want timeout code", err)
	}
}

func TestParseCommaInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"16,563", 16563, true},
		{"100", 100, true},
		{"0", 0, true},
		{"", 0, false},
		{",", 0, false},
		{"soon", 0, false},
		{"1,2,3", 123, true},
	}
	for _, tt := range tests {
		got, ok := ParseCommaInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCommaInt(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
