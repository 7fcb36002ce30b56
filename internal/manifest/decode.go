package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-release-tui/internal/release"
)

// Format of an encoded manifest.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// DetectFormat picks the format from a content type, falling back to the
// extension of name. JSON is the default.
func DetectFormat(contentType, name string) Format {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch {
			case strings.Contains(mt, "yaml"):
				return FormatYAML
			case strings.Contains(mt, "json"):
				return FormatJSON
			}
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses data as a manifest object. A bare list of entries is
// accepted too, as served by older publishers.
func Decode(data []byte, format Format) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Manifest{}, fmt.Errorf("empty manifest")
	}

	var m Manifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &m); err != nil {
			var list []release.Entry
			if yaml.Unmarshal(trimmed, &list) != nil {
				return Manifest{}, fmt.Errorf("decode yaml manifest: %w", err)
			}
			m.Releases = list
		}
	default:
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &m.Releases); err != nil {
				return Manifest{}, fmt.Errorf("decode json manifest: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &m); err != nil {
			return Manifest{}, fmt.Errorf("decode json manifest: %w", err)
		}
	}

	m.LatestVersion = strings.TrimSpace(m.LatestVersion)
	if m.LatestVersion == "" {
		m.LatestVersion = m.Latest()
	}
	return m, nil
}

// Encode renders m in format.
func Encode(m Manifest, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(m)
	}
	return json.MarshalIndent(m, "", "  ")
}
