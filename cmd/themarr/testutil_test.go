package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

// mockServer builds an httptest.Server that checks the request
// before handing it to the configured handler.
type mockServer struct {
	t          *testing.T
	handler    http.HandlerFunc
	expectPath string
	expectMeth string
	expectKey  string
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	return &mockServer{t: t}
}

func (m *mockServer) ExpectPath(path string) *mockServer {
	m.expectPath = path
	return m
}

func (m *mockServer) ExpectGET() *mockServer {
	m.expectMeth = http.MethodGet
	return m
}

func (m *mockServer) ExpectPOST() *mockServer {
	m.expectMeth = http.MethodPost
	return m
}

// ExpectAPIKey verifies the X-Api-Key header.
func (m *mockServer) ExpectAPIKey(key string) *mockServer {
	m.expectKey = key
	return m
}

func (m *mockServer) Handler(h http.HandlerFunc) *mockServer {
	m.handler = h
	return m
}

// RespondJSON responds 200 with v encoded as JSON.
func (m *mockServer) RespondJSON(v any) *mockServer {
	return m.RespondJSONStatus(http.StatusOK, v)
}

func (m *mockServer) RespondJSONStatus(code int, v any) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(m.t, w, code, v)
	}
	return m
}

// RespondError responds the way the API reports errors.
func (m *mockServer) RespondError(code int, errCode, message string) *mockServer {
	return m.RespondJSONStatus(code, map[string]string{"error": message, "code": errCode})
}

// Build starts the server and registers its shutdown with t.Cleanup.
func (m *mockServer) Build() *httptest.Server {
	m.t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.expectPath != "" {
			assert.Equal(m.t, m.expectPath, r.URL.Path, "unexpected request path")
		}
		if m.expectMeth != "" {
			assert.Equal(m.t, m.expectMeth, r.Method, "unexpected request method")
		}
		if m.expectKey != "" {
			assert.Equal(m.t, m.expectKey, r.Header.Get("X-Api-Key"), "unexpected api key")
		}
		if m.handler != nil {
			m.handler(w, r)
		}
	}))
	m.t.Cleanup(srv.Close)
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, code int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}

// runCLI executes the root command against server and returns its stdout.
// Flag values are reset first so tests do not leak into each other.
func runCLI(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	serverURL, apiKey, jsonOutput = "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--server", server}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
