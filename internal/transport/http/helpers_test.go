package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/supportline/supportline-server/internal/auth"
	"github.com/supportline/supportline-server/internal/chat"
	"github.com/supportline/supportline-server/internal/config"
	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/store/sqlite"
)

// newTestServer spins up the full HTTP surface against an in-memory
// store with a running hub, no redis roster.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "supportline",
		Audience: "supportline",
		TTL:      time.Hour,
	})
	chatService := chat.NewService(st)

	hub := core.NewHub(st, nil, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	srv := NewServer(hub, authService, chatService, nil, &cfg, &logger)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()
	return doJSON(t, ts, stdhttp.MethodPost, path, token, body)
}

func getJSON(t *testing.T, ts *httptest.Server, path, token string) (*stdhttp.Response, []byte) {
	t.Helper()
	return doJSON(t, ts, stdhttp.MethodGet, path, token, nil)
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := stdhttp.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, out.Bytes()
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("failed to decode response %s: %v", data, err)
	}
}

// registerUser registers a user through the API and returns its token
// and id.
func registerUser(t *testing.T, ts *httptest.Server, name, role string) (token, userID string) {
	t.Helper()

	resp, body := postJSON(t, ts, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "secret1",
		"role":     role,
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register %s returned %d: %s", name, resp.StatusCode, body)
	}

	var authResp AuthResponse
	decodeInto(t, body, &authResp)
	return authResp.Token, authResp.User.ID
}
