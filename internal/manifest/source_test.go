package manifest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-release-tui/internal/config"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latest_version":"v1.0.3"}`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/versions.json", srv.Client())
	require.NoError(t, err)

	m, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.0.3", m.LatestVersion)
}

func TestHTTPSource_StatusIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = src.Fetch(context.Background())
	require.ErrorIs(t, err, ErrFetch)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, srv.URL, fe.Source)
	assert.Contains(t, fe.Error(), "HTTP 503")
}

func TestHTTPSource_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, ErrFetch)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "versions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latest_version: v3\n"), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	m, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v3", m.LatestVersion)

	missing, err := NewFileSource(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	_, err = missing.Fetch(context.Background())
	require.ErrorIs(t, err, ErrFetch)
}

func TestGitHubSource_LatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/tool/releases/latest", r.URL.Path)
		w.Write([]byte(`{"tag_name":"v1.4.0","html_url":"https://example.com/r","published_at":"2024-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	src, err := NewGitHubSource("acme/tool", srv.Client())
	require.NoError(t, err)
	src.WithBaseURL(srv.URL)

	m, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", m.LatestVersion)
	require.Len(t, m.Releases, 1)
	assert.Equal(t, "2024-03-01", m.Releases[0].Date)
}

func TestGitHubSource_FallsBackToTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/tool/releases/latest":
			http.NotFound(w, r)
		case "/repos/acme/tool/tags":
			w.Write([]byte(`[{"name":"v0.9.1"},{"name":"v0.9.0"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	src, err := NewGitHubSource("acme/tool", srv.Client())
	require.NoError(t, err)
	m, err := src.WithBaseURL(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v0.9.1", m.LatestVersion)
}

func TestGitHubSource_BadRepo(t *testing.T) {
	_, err := NewGitHubSource("no-slash", nil)
	require.Error(t, err)
}

func TestCachedSource(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	fail.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"latest_version":"v2"}`))
	}))
	defer srv.Close()

	inner, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)
	src := NewCachedSource(inner, time.Minute)

	// failures are not cached
	_, err = src.Fetch(context.Background())
	require.Error(t, err)
	fail.Store(false)

	m, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", m.LatestVersion)

	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	src.Invalidate()
	_, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNew(t *testing.T) {
	src, err := New(config.ManifestConfig{})
	require.NoError(t, err)
	_, err = src.Fetch(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
	require.ErrorIs(t, err, ErrFetch)

	src, err = New(config.ManifestConfig{Kind: KindHTTP, URL: "http://localhost/x.json", CacheTTL: config.Duration{Duration: time.Minute}})
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, src)

	src, err = New(config.ManifestConfig{Kind: KindGitHub, Repo: "acme/tool"})
	require.NoError(t, err)
	assert.IsType(t, &GitHubSource{}, src)

	_, err = New(config.ManifestConfig{Kind: KindS3})
	require.Error(t, err)

	src, err = New(config.ManifestConfig{Kind: KindS3, S3: config.S3Config{Endpoint: "localhost:9000", Bucket: "releases", Object: "manifest.json"}})
	require.NoError(t, err)
	assert.Equal(t, "s3://releases/manifest.json", src.Name())

	_, err = New(config.ManifestConfig{Kind: "ftp"})
	require.Error(t, err)
}
