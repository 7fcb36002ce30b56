// Package manifest fetches the remotely published list of releases that
// update checks reconcile against.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/litescript/ls-release-tui/internal/config"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/version"
)

// Manifest is what a remote reports. It is read-only once fetched.
type Manifest struct {
	LatestVersion string          `json:"latest_version" yaml:"latest_version"`
	Releases      []release.Entry `json:"releases,omitempty" yaml:"releases,omitempty"`
}

// Latest returns LatestVersion, or the greatest version among Releases
// when the manifest did not name one.
func (m Manifest) Latest() string {
	if m.LatestVersion != "" {
		return m.LatestVersion
	}
	best, _, ok, _ := version.Max(m.Releases, func(e release.Entry) string { return e.Version })
	if !ok {
		return ""
	}
	return best.Version
}

// Source fetches a manifest.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Manifest, error)
}

// ErrFetch is matched by every FetchError.
var ErrFetch = errors.New("manifest fetch failed")

// ErrNotConfigured is wrapped by sources built from an empty config.
var ErrNotConfigured = errors.New("no manifest source configured")

// FetchError reports a failed manifest fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch manifest from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

func fetchErr(source string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Source: source, Err: err}
}

// Kinds accepted by New.
const (
	KindHTTP   = "http"
	KindFile   = "file"
	KindHTML   = "html"
	KindGitHub = "github"
	KindS3     = "s3"
)

// New builds the source described by cfg, wrapped in a cache when
// cfg.CacheTTL is positive. An empty kind yields a source that always
// fails with ErrNotConfigured.
func New(cfg config.ManifestConfig) (Source, error) {
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var (
		src Source
		err error
	)
	switch cfg.Kind {
	case "":
		return unconfigured{}, nil
	case KindHTTP:
		src, err = NewHTTPSource(cfg.URL, client)
	case KindFile:
		src, err = NewFileSource(cfg.URL)
	case KindHTML:
		src, err = NewHTMLSource(cfg.URL, cfg.Selector, client)
	case KindGitHub:
		src, err = NewGitHubSource(cfg.Repo, client)
	case KindS3:
		src, err = NewS3Source(cfg.S3)
	default:
		return nil, fmt.Errorf("manifest: unknown kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheTTL.Duration > 0 {
		src = NewCachedSource(src, cfg.CacheTTL.Duration)
	}
	return src, nil
}

type unconfigured struct{}

func (unconfigured) Name() string { return "none" }

func (unconfigured) Fetch(context.Context) (Manifest, error) {
	return Manifest{}, &FetchError{Source: "none", Err: ErrNotConfigured}
}
