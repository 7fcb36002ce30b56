package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/litescript/ls-release-tui/internal/log"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

const userAgent = "release-tui"

// HTTPSource fetches a JSON or YAML manifest over HTTP.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for url. A nil client gets a 10s timeout.
func NewHTTPSource(url string, client *http.Client) (*HTTPSource, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("manifest: http source needs a url")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{url: url, client: client}, nil
}

// Name returns the manifest URL.
func (s *HTTPSource) Name() string {
	return s.url
}

// Fetch downloads and decodes the manifest.
func (s *HTTPSource) Fetch(ctx context.Context) (Manifest, error) {
	body, contentType, err := get(ctx, s.client, s.url, "application/json, application/yaml;q=0.9, */*;q=0.5")
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), err)
	}

	m, err := Decode(body, DetectFormat(contentType, s.url))
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), err)
	}
	log.Debug(log.CatManifest, "fetched manifest", "source", s.url, "latest", m.LatestVersion, "releases", len(m.Releases))
	return m, nil
}

func get(ctx context.Context, client *http.Client, url, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// FileSource reads a manifest from the local filesystem, such as a
// versions.json next to a static site.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) (*FileSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("manifest: file source needs a path")
	}
	return &FileSource{path: path}, nil
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (Manifest, error) {
	if err := ctx.Err(); err != nil {
		return Manifest{}, fetchErr(s.path, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Manifest{}, fetchErr(s.path, err)
	}
	m, err := Decode(data, DetectFormat("", s.path))
	if err != nil {
		return Manifest{}, fetchErr(s.path, err)
	}
	return m, nil
}
