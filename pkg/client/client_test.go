package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Sternrassler/reqres-client/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig(baseURL)
	cfg.Retry = fastRetry()
	cfg.APIKey = "reqres-free-v1"

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:     "empty base url",
			mutate:   func(c *Config) { c.BaseURL = "" },
			errorMsg: "base url is required",
		},
		{
			name:     "relative base url",
			mutate:   func(c *Config) { c.BaseURL = "/api/" },
			errorMsg: `base url must be absolute (got "/api/")`,
		},
		{
			name:     "zero timeout",
			mutate:   func(c *Config) { c.Timeout = 0 },
			errorMsg: "timeout must be positive (got 0s)",
		},
		{
			name:     "zero attempts",
			mutate:   func(c *Config) { c.Retry.MaxAttempts = 0 },
			errorMsg: "retry max_attempts must be >= 1 (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("https://reqres.in/api/")
			tt.mutate(&cfg)

			c, err := New(cfg)
			if tt.errorMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if c.BaseURL() != "https://reqres.in/api/" {
					t.Errorf("BaseURL() = %q", c.BaseURL())
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got nil")
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.errorMsg)
			}
		})
	}
}

func TestNew_DefaultUserAgent(t *testing.T) {
	cfg := DefaultConfig("https://reqres.in/api/")
	cfg.UserAgent = ""

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.config.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", c.config.UserAgent, DefaultUserAgent)
	}
}

func TestClient_Get_ResolvesPathAndHeaders(t *testing.T) {
	mock := testutil.NewMockReqres()
	defer mock.Close()
	mock.SetResponse("/api/users", testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"page":2}`})

	c := newTestClient(t, mock.URL()+"/api/")

	resp, err := c.Get(context.Background(), "users", url.Values{"page": []string{"2"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != `{"page":2}` {
		t.Errorf("Body = %s", resp.Body)
	}

	req := mock.LastRequest()
	if req.URL.Path != "/api/users" || req.URL.Query().Get("page") != "2" {
		t.Errorf("request URL = %s, want /api/users?page=2", req.URL)
	}
	if got := req.Header.Get(HeaderAPIKey); got != "reqres-free-v1" {
		t.Errorf("%s = %q", HeaderAPIKey, got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("User-Agent = %q", got)
	}
	if _, err := uuid.Parse(req.Header.Get(HeaderRequestID)); err != nil {
		t.Errorf("%s is not a UUID: %v", HeaderRequestID, err)
	}
}

func TestClient_Get_NotFoundIsNotRetried(t *testing.T) {
	mock := testutil.NewMockReqres()
	defer mock.Close()
	mock.SetResponse("/users/23", testutil.NewNotFoundResponse())

	c := newTestClient(t, mock.URL())

	resp, err := c.Get(context.Background(), "users/23", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
	if n := mock.RequestCount("/users/23"); n != 1 {
		t.Errorf("request count = %d, want 1", n)
	}
}

func TestClient_Get_ServerErrorRetriedThenReturned(t *testing.T) {
	mock := testutil.NewMockReqres()
	defer mock.Close()
	mock.SetResponse("/users/1", testutil.NewServerErrorResponse())

	c := newTestClient(t, mock.URL())

	resp, err := c.Get(context.Background(), "users/1", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if n := mock.RequestCount("/users/1"); n != 3 {
		t.Errorf("request count = %d, want 3 (MaxAttempts)", n)
	}
}

func TestClient_Get_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"id":1}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	resp, err := c.Get(context.Background(), "users/1", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClient_Get_NetworkErrorExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	c := newTestClient(t, baseURL)

	resp, err := c.Get(context.Background(), "users/1", nil)
	if err == nil {
		t.Fatalf("expected error, got response %+v", resp)
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
}

func TestClient_Get_ContextCancelledDuringBackoff(t *testing.T) {
	mock := testutil.NewMockReqres()
	defer mock.Close()
	mock.SetResponse("/users/1", testutil.NewServerErrorResponse())

	cfg := DefaultConfig(mock.URL())
	cfg.Retry.InitialBackoff = time.Minute
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Get(ctx, "users/1", nil)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
}

func TestClient_Get_AttemptTimeout(t *testing.T) {
	mock := testutil.NewMockReqres()
	defer mock.Close()
	mock.SetResponse("/slow", testutil.MockResponse{StatusCode: http.StatusOK, Delay: 200 * time.Millisecond})

	cfg := DefaultConfig(mock.URL())
	cfg.Timeout = 20 * time.Millisecond
	cfg.Retry = fastRetry()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Get(context.Background(), "slow", nil)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if err != nil && !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %q, want attempt count", err.Error())
	}
}
