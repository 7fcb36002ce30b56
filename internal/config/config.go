// Package config handles application configuration via TOML files.
// Configuration is stored at ~/.config/release-tui/config.toml and covers
// where snapshots are persisted, which remote manifest to check, the
// manifest server, and debug logging.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides ConfigPath when set.
const EnvConfigPath = "RELEASE_TUI_CONFIG"

// Config holds application configuration
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Manifest ManifestConfig `toml:"manifest"`
	Releases ReleasesConfig `toml:"releases"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// StorageConfig selects the snapshot store.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `toml:"backend"`
	// Path is a directory for "file" and a database file for "sqlite".
	Path string `toml:"path"`
}

// ManifestConfig describes the remote manifest checked for updates.
type ManifestConfig struct {
	// Kind is one of "http", "file", "html", "github", "s3".
	// Empty disables update checks.
	Kind string `toml:"kind"`
	URL  string `toml:"url"`
	// Repo is "owner/name" for the github kind.
	Repo string `toml:"repo"`
	// Selector overrides the element selector for the html kind.
	Selector string   `toml:"selector"`
	CacheTTL Duration `toml:"cache_ttl"`
	Timeout  Duration `toml:"timeout"`
	S3       S3Config `toml:"s3"`
}

// S3Config holds object storage settings for the s3 manifest kind.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Object    string `toml:"object"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// ReleasesConfig holds registry behaviour settings.
type ReleasesConfig struct {
	// StrictVersions rejects labels that do not parse on add and edit.
	StrictVersions bool `toml:"strict_versions"`
	// SeedDefaults fills an empty store with the sample releases.
	SeedDefaults bool `toml:"seed_defaults"`
	// ActivityLimit caps the persisted activity log. 0 keeps everything.
	ActivityLimit int `toml:"activity_limit"`
}

// ServerConfig holds manifest server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig holds debug log settings.
type LogConfig struct {
	// Path of the debug log. Empty disables logging.
	Path  string `toml:"path"`
	Debug bool   `toml:"debug"`
}

// Duration is a time.Duration written as a string such as "5m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    DataDir(),
		},
		Manifest: ManifestConfig{
			Kind:     "", // Must be configured by user
			CacheTTL: Duration{5 * time.Minute},
			Timeout:  Duration{10 * time.Second},
		},
		Releases: ReleasesConfig{
			StrictVersions: true,
			SeedDefaults:   true,
			ActivityLimit:  500,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// DataDir returns the default directory for persisted snapshots.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "release-tui")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "release-tui", "config.toml")
}

// Load reads config from ConfigPath or returns defaults
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		// No config file, return defaults
		return cfg, nil
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes config to ConfigPath
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes config to path
func SaveTo(path string, cfg Config) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Location is the path handed to the store: the snapshot directory for
// the file backend, and the database file for sqlite. A sqlite path
// without an extension is taken as a directory holding releases.db.
func (s StorageConfig) Location() string {
	if s.Backend == "sqlite" && filepath.Ext(s.Path) == "" {
		return filepath.Join(s.Path, "releases.db")
	}
	return s.Path
}

// EnsureDataDir creates the storage directory if it doesn't exist
func EnsureDataDir(cfg Config) error {
	dir := cfg.Storage.Location()
	if cfg.Storage.Backend == "sqlite" {
		dir = filepath.Dir(dir)
	}
	if cfg.Storage.Backend == "memory" || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
