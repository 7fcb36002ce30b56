package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/litescript/ls-release-tui/internal/release"
)

// DefaultGitHubAPI is the GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// SelfRepo is where release-tui itself is published.
const SelfRepo = "litescript/ls-release-tui"

// GitHubRelease represents the GitHub API response for releases and tags.
type GitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// GitHubSource checks a repository's latest release, falling back to its
// tags when it has no releases.
type GitHubSource struct {
	repo    string
	baseURL string
	client  *http.Client
}

// NewGitHubSource creates a source for repo ("owner/name").
func NewGitHubSource(repo string, client *http.Client) (*GitHubSource, error) {
	repo = strings.Trim(strings.TrimSpace(repo), "/")
	if strings.Count(repo, "/") != 1 {
		return nil, fmt.Errorf("manifest: github repo must be owner/name, got %q", repo)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &GitHubSource{repo: repo, baseURL: DefaultGitHubAPI, client: client}, nil
}

// WithBaseURL points the source at another API host, such as GitHub
// Enterprise or a test server.
func (s *GitHubSource) WithBaseURL(baseURL string) *GitHubSource {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Name returns the repository.
func (s *GitHubSource) Name() string {
	return "github:" + s.repo
}

// Fetch returns the latest release as a single-entry manifest.
func (s *GitHubSource) Fetch(ctx context.Context) (Manifest, error) {
	var rel GitHubRelease
	status, err := s.getJSON(ctx, "/releases/latest", &rel)
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), err)
	}

	if status != http.StatusOK {
		// If no releases, try tags instead
		return s.fetchTags(ctx)
	}

	return releaseManifest(rel), nil
}

// fetchTags falls back to checking tags if no releases exist.
func (s *GitHubSource) fetchTags(ctx context.Context) (Manifest, error) {
	var tags []struct {
		Name string `json:"name"`
	}
	status, err := s.getJSON(ctx, "/tags", &tags)
	if err != nil {
		return Manifest{}, fetchErr(s.Name(), err)
	}
	if status != http.StatusOK {
		return Manifest{}, fetchErr(s.Name(), fmt.Errorf("HTTP %d", status))
	}
	if len(tags) == 0 {
		return Manifest{}, nil
	}

	// Tags are returned newest first
	return releaseManifest(GitHubRelease{TagName: tags[0].Name}), nil
}

func (s *GitHubSource) getJSON(ctx context.Context, path string, v any) (int, error) {
	url := s.baseURL + "/repos/" + s.repo + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.StatusCode, nil
}

func releaseManifest(rel GitHubRelease) Manifest {
	label := strings.TrimSpace(rel.TagName)
	if label == "" {
		return Manifest{}
	}
	e := release.Entry{Version: label, DownloadURL: rel.HTMLURL}
	if !rel.PublishedAt.IsZero() {
		e.Date = rel.PublishedAt.UTC().Format(release.DateLayout)
	}
	return Manifest{LatestVersion: label, Releases: []release.Entry{e}}
}
