package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MDOC_DOCS_DIR
const EnvPrefix = "MDOC"

// Config represents the complete mdoc configuration
type Config struct {
	DocsDir           string `mapstructure:"docs_dir"`
	CacheFile         string `mapstructure:"cache_file"`
	IndexFile         string `mapstructure:"index_file"`
	RecentDays        int    `mapstructure:"recent_days"`
	CatalogTTLSeconds int    `mapstructure:"catalog_ttl_seconds"`

	GitHub GitHubConfig `mapstructure:"github"`
	Site   SiteConfig   `mapstructure:"site"`
	Log    LogConfig    `mapstructure:"log"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Editor string       `mapstructure:"editor"`
}

// GitHubConfig configures the remote history source
type GitHubConfig struct {
	Repo              string  `mapstructure:"repo"`
	Enabled           bool    `mapstructure:"enabled"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	APIURL            string  `mapstructure:"api_url"`
	PathPrefix        string  `mapstructure:"path_prefix"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Token             string  `mapstructure:"token"`
}

// SiteConfig describes the published site
type SiteConfig struct {
	Title   string `mapstructure:"title"`
	BaseURL string `mapstructure:"base_url"`

	// EditBaseURL prefixes source files to link their edit page. Defaults
	// to the GitHub editor of github.repo on main when left empty.
	EditBaseURL string `mapstructure:"edit_base_url"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig configures the JSON API server
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Timeout returns the remote timeout as a duration
func (c GitHubConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CatalogTTL returns the catalog memo lifetime
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSeconds) * time.Second
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("docs_dir", "docs")
	v.SetDefault("cache_file", filepath.Join(dataHome(), "mdoc", "github_cache.json"))
	v.SetDefault("index_file", "")
	v.SetDefault("recent_days", 7)
	v.SetDefault("catalog_ttl_seconds", 60)

	v.SetDefault("github.repo", "")
	v.SetDefault("github.enabled", true)
	v.SetDefault("github.timeout_seconds", 5)
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.path_prefix", "")
	v.SetDefault("github.requests_per_second", 0)
	v.SetDefault("github.token", "")

	v.SetDefault("site.title", "Documentation")
	v.SetDefault("site.base_url", "")
	v.SetDefault("site.edit_base_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("editor", "")
}

// New returns a viper instance with defaults, config search paths and
// environment overrides registered. Callers may bind flags before Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("mdoc")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(configHome(), "mdoc"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional token variable works without the prefix
	v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	return v
}

// Load reads the optional config file and unmarshals the result.
// An explicit file that cannot be read is an error, a missing default one
// is not.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.DocsDir = expandHome(cfg.DocsDir)
	cfg.CacheFile = expandHome(cfg.CacheFile)
	cfg.IndexFile = expandHome(cfg.IndexFile)
	if cfg.Site.EditBaseURL == "" {
		cfg.Site.EditBaseURL = defaultEditBase(cfg.GitHub)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DocsDir == "" {
		return &ConfigError{Field: "docs_dir", Message: "must not be empty"}
	}
	if c.CacheFile == "" {
		return &ConfigError{Field: "cache_file", Message: "must not be empty"}
	}
	if c.RecentDays < 0 {
		return &ConfigError{Field: "recent_days", Message: "must not be negative"}
	}
	if c.CatalogTTLSeconds < 0 {
		return &ConfigError{Field: "catalog_ttl_seconds", Message: "must not be negative"}
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "github.timeout_seconds", Message: "must be positive"}
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return &ConfigError{Field: "github.requests_per_second", Message: "must not be negative"}
	}
	if c.GitHub.Repo != "" && strings.Count(c.GitHub.Repo, "/") != 1 {
		return &ConfigError{Field: "github.repo", Message: "must look like owner/name"}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "log.format", Message: "must be text or json"}
	}
	return nil
}

// HistoryEnabled reports whether remote history should be consulted
func (c *Config) HistoryEnabled() bool {
	return c.GitHub.Enabled && c.GitHub.Repo != ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// defaultEditBase points at the GitHub web editor for the docs directory
func defaultEditBase(gh GitHubConfig) string {
	if gh.Repo == "" {
		return ""
	}
	base := "https://github.com/" + gh.Repo + "/edit/main"
	if prefix := strings.Trim(gh.PathPrefix, "/"); prefix != "" {
		base += "/" + prefix
	}
	return base
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
