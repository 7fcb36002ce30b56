package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/session"
	"github.com/litescript/ls-release-tui/internal/store"
)

var _ session.Sink = (*Server)(nil)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, New().Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestManifestEndpoints(t *testing.T) {
	s := New()
	s.Publish(manifest.Manifest{Releases: []release.Entry{{Version: "v1.0.9"}, {Version: "v1.0.10"}}})

	rec := get(t, s.Handler(), "/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	m, err := manifest.Decode(rec.Body.Bytes(), manifest.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.10", m.LatestVersion)

	rec = get(t, s.Handler(), "/manifest.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	m, err = manifest.Decode(rec.Body.Bytes(), manifest.FormatYAML)
	require.NoError(t, err)
	assert.Len(t, m.Releases, 2)
}

func TestMetrics(t *testing.T) {
	s := New()
	s.Publish(manifest.Manifest{Releases: release.DefaultEntries()})
	get(t, s.Handler(), "/manifest.json")
	get(t, s.Handler(), "/nope")

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `release_tui_http_requests_total{route="/manifest.json",status="200"} 1`)
	assert.Contains(t, body, `status="404"`)
	assert.Contains(t, body, "release_tui_published_releases 2")
}

func TestServerAsSessionSink(t *testing.T) {
	s := New()
	sess := session.New(session.WithStore(store.NewMemoryStore()), session.WithSink(s))
	require.NoError(t, sess.Load())

	_, err := sess.Add(release.Entry{Version: "v2.0.0"})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	src, err := manifest.NewHTTPSource(srv.URL+"/manifest.json", srv.Client())
	require.NoError(t, err)
	m, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", m.LatestVersion)
	require.Len(t, m.Releases, 3)
	assert.Equal(t, "v2.0.0", m.Releases[0].Version)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New().ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	require.NoError(t, <-done)
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, New().Handler(), "/releases")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, _ = io.ReadAll(rec.Body)
}
