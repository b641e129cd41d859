package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MosinFAM/halal-guide/internal/scan"
	"github.com/MosinFAM/halal-guide/internal/storage"
	"github.com/MosinFAM/halal-guide/internal/storage/fixtures"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Complete(ctx context.Context, prompt string, img scan.Image) (string, error) {
	p.calls++
	return p.reply, p.err
}

type testEnv struct {
	handler http.Handler
	source  *storage.Source
}

// newTestEnv wires a server whose fallback is the built-in dataset. live may
// be nil for demo mode; provider may be nil for an unconfigured scanner.
func newTestEnv(t *testing.T, live storage.Storage, provider scan.Provider, opts Options) *testEnv {
	t.Helper()
	source := storage.NewSource(live, storage.NewFallbackStorage(fixtures.MustLoad()))
	h := NewHandler(source, scan.NewScanner(provider, source), opts)
	return &testEnv{handler: NewServer(h, opts), source: source}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
