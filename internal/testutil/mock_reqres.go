// Package testutil provides a configurable reqres-like HTTP server for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// UserJSON is the wire shape of one user.
type UserJSON struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// MockReqres is a configurable mock of the reqres users API.
//
// Handlers are looked up by "path?query" first and then by path alone, so
// individual pages of /users can be configured separately.
type MockReqres struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	counts   map[string]int
	total    int
	last     *http.Request
}

// NewMockReqres starts a new mock server.
func NewMockReqres() *MockReqres {
	mock := &MockReqres{
		handlers: make(map[string]http.HandlerFunc),
		counts:   make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.total++
		mock.counts[r.URL.Path]++
		if r.URL.RawQuery != "" {
			mock.counts[r.URL.Path+"?"+r.URL.RawQuery]++
		}
		mock.last = r.Clone(context.Background())
		handler, exists := mock.handlers[r.URL.Path+"?"+r.URL.RawQuery]
		if !exists {
			handler, exists = mock.handlers[r.URL.Path]
		}
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		writeResponse(w, NewNotFoundResponse())
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockReqres) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockReqres) Close() {
	m.server.Close()
}

// Reset clears all tracking counters. Handlers are kept.
func (m *MockReqres) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.total = 0
	m.last = nil
}

// SetHandler sets a custom handler for a path, optionally with "?query".
func (m *MockReqres) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockReqres) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		writeResponse(w, resp)
	})
}

// SetUser serves a single-user envelope at /users/{id}.
func (m *MockReqres) SetUser(user UserJSON) {
	m.SetResponse(fmt.Sprintf("/users/%d", user.ID), NewUserResponse(user))
}

// SetPage serves one page of the paged envelope at /users?page={page}.
func (m *MockReqres) SetPage(page, perPage, total, totalPages int, users []UserJSON) {
	m.SetResponse(fmt.Sprintf("/users?page=%d", page), NewPageResponse(page, perPage, total, totalPages, users))
}

// RequestCount returns the requests seen for a path or "path?query".
func (m *MockReqres) RequestCount(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[key]
}

// TotalRequests returns the number of requests made to the server.
func (m *MockReqres) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// LastRequest returns a copy of the most recent request, or nil.
func (m *MockReqres) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func jsonResponse(status int, v any) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal response: %v", err))
	}
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewUserResponse creates a 200 single-user envelope.
func NewUserResponse(user UserJSON) MockResponse {
	return jsonResponse(http.StatusOK, map[string]any{"data": user})
}

// NewPageResponse creates a 200 paged envelope.
func NewPageResponse(page, perPage, total, totalPages int, users []UserJSON) MockResponse {
	if users == nil {
		users = []UserJSON{}
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"page":        page,
		"per_page":    perPage,
		"total":       total,
		"total_pages": totalPages,
		"data":        users,
	})
}

// NewMissingDataResponse creates a 200 response without a data field.
func NewMissingDataResponse() MockResponse {
	return jsonResponse(http.StatusOK, map[string]any{"page": 1})
}

// NewNotFoundResponse creates a 404 with reqres' empty object body.
func NewNotFoundResponse() MockResponse {
	return jsonResponse(http.StatusNotFound, map[string]any{})
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return jsonResponse(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// Sample users as served by reqres.in.
var (
	George = UserJSON{ID: 1, Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth", Avatar: "https://reqres.in/img/faces/1-image.jpg"}
	Janet  = UserJSON{ID: 2, Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver", Avatar: "https://reqres.in/img/faces/2-image.jpg"}
	Emma   = UserJSON{ID: 3, Email: "emma.wong@reqres.in", FirstName: "Emma", LastName: "Wong", Avatar: "https://reqres.in/img/faces/3-image.jpg"}
	Eve    = UserJSON{ID: 4, Email: "eve.holt@reqres.in", FirstName: "Eve", LastName: "Holt", Avatar: "https://reqres.in/img/faces/4-image.jpg"}
)
