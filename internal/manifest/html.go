package manifest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/release"
)

// DefaultSelector matches elements that declare their release inline.
const DefaultSelector = "[data-version]"

// HTMLSource scrapes a release listing page.
//
// Elements matched by the selector carry data-version, an optional
// data-date, and link to the download with their first a[href]. Pages
// without such markup are scanned for links shaped like
// download/<version>/<file>. A <meta name="latest-version"> tag wins over
// whatever the listing says.
type HTMLSource struct {
	url      string
	selector string
	client   *http.Client
}

// NewHTMLSource creates a scraper for pageURL. An empty selector uses
// DefaultSelector.
func NewHTMLSource(pageURL, selector string, client *http.Client) (*HTMLSource, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("manifest: html source needs a url")
	}
	if selector == "" {
		selector = DefaultSelector
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTMLSource{url: pageURL, selector: selector, client: client}, nil
}

// Name returns the page URL.
func (s *HTMLSource) Name() string {
	return s.url
}

// Fetch downloads the page and extracts its releases.
func (s *HTMLSource) Fetch(ctx context.Context) (Manifest, error) {
	body, _, err := get(ctx, s.client, s.url, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return Manifest{}, fetchErr(s.url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Manifest{}, fetchErr(s.url, err)
	}

	m := s.extract(doc)
	if m.LatestVersion == "" && len(m.Releases) == 0 {
		return Manifest{}, fetchErr(s.url, fmt.Errorf("no releases found on page"))
	}
	log.Debug(log.CatManifest, "scraped releases", "source", s.url, "found", len(m.Releases), "latest", m.LatestVersion)
	return m, nil
}

func (s *HTMLSource) extract(doc *goquery.Document) Manifest {
	var m Manifest

	if content, ok := doc.Find("meta[name='latest-version']").First().Attr("content"); ok {
		m.LatestVersion = strings.TrimSpace(content)
	}

	m.Releases = s.extractTagged(doc)
	if len(m.Releases) == 0 {
		m.Releases = extractLinks(doc)
	}

	if m.LatestVersion == "" {
		m.LatestVersion = m.Latest()
	}
	return m
}

// extractTagged reads elements that carry the version as an attribute.
func (s *HTMLSource) extractTagged(doc *goquery.Document) []release.Entry {
	var entries []release.Entry

	doc.Find(s.selector).Each(func(i int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.AttrOr("data-version", ""))
		if label == "" {
			label = strings.TrimSpace(sel.Find("[data-version]").First().AttrOr("data-version", ""))
		}
		if label == "" {
			return
		}

		e := release.Entry{
			Version: label,
			Date:    strings.TrimSpace(sel.AttrOr("data-date", "")),
		}
		if e.Date == "" {
			e.Date = extractDate(sel.Text())
		}
		sel.Find("a[href]").First().Each(func(_ int, a *goquery.Selection) {
			e.DownloadURL, _ = a.Attr("href")
		})
		entries = append(entries, e)
	})

	return entries
}

var downloadLink = regexp.MustCompile(`(?:^|/)download/([^/]+)/([^/?#]+)$`)

// extractLinks falls back to download links when nothing is tagged.
func extractLinks(doc *goquery.Document) []release.Entry {
	var entries []release.Entry
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		matches := downloadLink.FindStringSubmatch(href)
		if matches == nil || seen[href] {
			return
		}
		seen[href] = true

		e := release.Entry{Version: matches[1], DownloadURL: href}

		// Walk up to a row-like container for the date
		for _, container := range []string{"tr", "li", "article", "div"} {
			parent := link.Closest(container)
			if parent.Length() == 0 {
				continue
			}
			if d := extractDate(parent.Text()); d != "" {
				e.Date = d
				break
			}
		}
		entries = append(entries, e)
	})

	return entries
}

var dateRegex = regexp.MustCompile(`(?:^|\D)(\d{4}-\d{2}-\d{2})(?:\D|$)`)

func extractDate(text string) string {
	m := dateRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	d := m[1]
	if _, err := time.Parse(release.DateLayout, d); err != nil {
		return ""
	}
	return d
}
