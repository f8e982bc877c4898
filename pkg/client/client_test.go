package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, serverURL string, token string) *Client {
	t.Helper()

	logger := zerolog.Nop()
	cfg := DefaultConfig(serverURL)
	cfg.Logger = &logger
	if token != "" {
		cfg.Session = staticToken(token)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig("http://localhost:3000"),
		},
		{
			name:        "empty base url",
			config:      Config{UserAgent: "TestApp/1.0.0"},
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name:        "unsupported scheme",
			config:      Config{BaseURL: "ftp://example.com", UserAgent: "TestApp/1.0.0"},
			expectError: true,
			errorMsg:    `base url must be http or https (got "ftp://example.com")`,
		},
		{
			name:        "empty user agent",
			config:      Config{BaseURL: "http://localhost:3000"},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if client == nil {
				t.Error("Client is nil")
			}
		})
	}
}

func TestDo_HeadersAndQuery(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "tok-123")
	_, err := Get(context.Background(), c, Request{Path: "/product", Query: url.Values{"page": {"2"}, "name": {"tv"}}})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.URL.Path != "/product" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if got.URL.RawQuery != "name=tv&page=2" {
		t.Errorf("query = %q", got.URL.RawQuery)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", auth)
	}
	if ua := got.Header.Get("User-Agent"); ua != "neostore-client/0.1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
	if id := got.Header.Get(RequestIDHeader); len(id) != 16 {
		t.Errorf("%s = %q, want 16 chars", RequestIDHeader, id)
	}
}

func TestDo_AnonymousOmitsToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"t"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "stale")
	var out struct {
		Token string `json:"token"`
	}
	err := SendJSON(context.Background(), c, Request{
		Method:    http.MethodPost,
		Path:      "/users/signin",
		Body:      map[string]string{"email": "a@b.co"},
		Anonymous: true,
	}, &out)
	if err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
	if out.Token != "t" {
		t.Errorf("token = %q", out.Token)
	}
}

func TestDo_JSONBody(t *testing.T) {
	var body map[string]any
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	err := SendJSON(context.Background(), c, Request{
		Method: http.MethodPatch,
		Path:   "/cart/update",
		Body:   map[string]any{"productId": "p1", "quantity": 3},
	}, nil)
	if err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if body["productId"] != "p1" || body["quantity"] != float64(3) {
		t.Errorf("body = %v", body)
	}
}

func TestDo_BackendErrorPassThrough(t *testing.T) {
	payload := `{"message":"Product is out of stock","code":"OUT_OF_STOCK"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(payload))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	_, err := Get(context.Background(), c, Request{Path: "/cart"})

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if e.Kind != KindBackend || e.StatusCode != http.StatusConflict {
		t.Errorf("kind/status = %s/%d", e.Kind, e.StatusCode)
	}
	if e.Message != "Product is out of stock" {
		t.Errorf("Message = %q", e.Message)
	}
	if string(e.Payload) != payload {
		t.Errorf("Payload = %s, want verbatim %s", e.Payload, payload)
	}
	if errors.Is(err, ErrUnreachable) {
		t.Error("backend error must not match ErrUnreachable")
	}
	if !IsStatus(err, http.StatusConflict) {
		t.Error("IsStatus(409) should be true")
	}
}

func TestDo_Unreachable(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := newTestClient(t, "http://"+addr, "")
	_, err = Get(context.Background(), c, Request{Path: "/product"})

	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	if err.Error() != UnreachableMessage {
		t.Errorf("message = %q, want %q", err.Error(), UnreachableMessage)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Get(ctx, c, Request{Path: "/orders"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, ErrUnreachable) {
		t.Error("cancellation must not be reported as unreachable")
	}
}

func TestBaseURLWithPrefix(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/api/v1", "")
	if _, err := Get(context.Background(), c, Request{Path: "/product/abc"}); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if path != "/api/v1/product/abc" {
		t.Errorf("path = %q", path)
	}
}

func TestSendJSON_EmptyBodySkipsDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	var out struct {
		Message string `json:"message"`
	}
	if err := SendJSON(context.Background(), c, Request{Method: http.MethodPost, Path: "/cart/add"}, &out); err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}
	if out.Message != "" {
		t.Errorf("message = %q, want empty", out.Message)
	}
}

func TestSendJSON_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	var out map[string]any
	err := SendJSON(context.Background(), c, Request{Method: http.MethodPost, Path: "/order/create"}, &out)
	if err == nil {
		t.Fatal("expected decode error")
	}
	var e *Error
	if errors.As(err, &e) {
		t.Errorf("decode failure must not be a request *Error, got %v", e)
	}
}
