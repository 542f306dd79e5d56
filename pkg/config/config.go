package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the loader client
type Config struct {
	// Backend job service
	Backend BackendConfig `yaml:"backend" json:"backend"`

	// Poll and retry cadence of the profile session
	Polling PollingConfig `yaml:"polling" json:"polling"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry policy for media fetches
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal UI preferences
	UI UIConfig `yaml:"ui" json:"ui"`
}

// BackendConfig describes where the backend lives and the opaque settings
// forwarded with every request that accepts them
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"IGLOADER_BACKEND_URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"IGLOADER_BACKEND_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" env:"IGLOADER_USER_AGENT"`
	Proxy     string        `yaml:"proxy" json:"proxy" env:"IGLOADER_PROXY"`
	DocID     string        `yaml:"doc_id" json:"doc_id" env:"IGLOADER_DOC_ID"`
}

// PollingConfig holds the timings of the profile session background work
type PollingConfig struct {
	InitialPageAttempts int           `yaml:"initial_page_attempts" json:"initial_page_attempts" env:"IGLOADER_INITIAL_PAGE_ATTEMPTS"`
	InitialPageDelay    time.Duration `yaml:"initial_page_delay" json:"initial_page_delay" env:"IGLOADER_INITIAL_PAGE_DELAY"`
	LoadMoreCooldown    time.Duration `yaml:"load_more_cooldown" json:"load_more_cooldown" env:"IGLOADER_LOAD_MORE_COOLDOWN"`
	TaskInterval        time.Duration `yaml:"task_interval" json:"task_interval" env:"IGLOADER_TASK_INTERVAL"`
	HighlightInterval   time.Duration `yaml:"highlight_interval" json:"highlight_interval" env:"IGLOADER_HIGHLIGHT_INTERVAL"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" env:"IGLOADER_REQUESTS_PER_MINUTE"`
	BurstSize         int `yaml:"burst_size" json:"burst_size" env:"IGLOADER_BURST_SIZE"`
}

// RetryConfig holds retry configuration for media downloads
type RetryConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled" env:"IGLOADER_RETRY_ENABLED"`
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts" env:"IGLOADER_RETRY_MAX_ATTEMPTS"`
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval" json:"max_interval"`
	Multiplier      float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory" env:"IGLOADER_OUTPUT_DIR"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	WriteMetadata     bool   `yaml:"write_metadata" json:"write_metadata"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads" env:"IGLOADER_CONCURRENT_DOWNLOADS"`
	ItemDelay           time.Duration `yaml:"item_delay" json:"item_delay"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	OpenFallback        bool          `yaml:"open_fallback" json:"open_fallback"`
	SkipVideos          bool          `yaml:"skip_videos" json:"skip_videos"`
	SkipImages          bool          `yaml:"skip_images" json:"skip_images"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled" env:"IGLOADER_NOTIFICATIONS_ENABLED"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level" env:"IGLOADER_LOG_LEVEL"`
	File      string `yaml:"file" json:"file" env:"IGLOADER_LOG_FILE"`
	SentryDSN string `yaml:"sentry_dsn" json:"sentry_dsn" env:"IGLOADER_SENTRY_DSN"`
	Console   bool   `yaml:"console" json:"console"`
}

// UIConfig holds presentation preferences
type UIConfig struct {
	Language string `yaml:"language" json:"language" env:"IGLOADER_LANGUAGE"`
	NoColor  bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:   "http://127.0.0.1:5000",
			Timeout:   0,
			UserAgent: "igloader/1.0",
		},
		Polling: PollingConfig{
			InitialPageAttempts: 5,
			InitialPageDelay:    time.Second,
			LoadMoreCooldown:    2 * time.Second,
			TaskInterval:        3 * time.Second,
			HighlightInterval:   5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			BurstSize:         10,
		},
		Retry: RetryConfig{
			Enabled:         true,
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      1.5,
		},
		Output: OutputConfig{
			BaseDirectory:     "./downloads",
			CreateUserFolders: true,
			OverwriteExisting: false,
			WriteMetadata:     true,
		},
		Download: DownloadConfig{
			ConcurrentDownloads: 3,
			ItemDelay:           500 * time.Millisecond,
			DownloadTimeout:     60 * time.Second,
			OpenFallback:        true,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		UI: UIConfig{
			Language: "en",
		},
	}
}

// LoadFromEnv overrides values from IGLOADER_* environment variables.
// Variables that are not set leave the current value untouched.
func (c *Config) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igloader.yaml",
		".igloader.yml",
		"igloader.yaml",
		filepath.Join(home, ".config", "igloader", "config.yaml"),
		filepath.Join(home, ".config", "igloader", "config.yml"),
		filepath.Join(home, ".igloader.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend base URL is required"))
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend base URL %q is not an absolute URL", c.Backend.BaseURL))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend timeout cannot be negative"))
	}

	if c.Polling.InitialPageAttempts <= 0 {
		errs = append(errs, errors.New("initial page attempts must be positive"))
	}
	if c.Polling.InitialPageDelay < 0 || c.Polling.LoadMoreCooldown < 0 {
		errs = append(errs, errors.New("polling delays cannot be negative"))
	}
	if c.Polling.TaskInterval <= 0 || c.Polling.HighlightInterval <= 0 {
		errs = append(errs, errors.New("poll intervals must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.ConcurrentDownloads > 10 {
		errs = append(errs, errors.New("concurrent downloads should not exceed 10"))
	}
	if c.Download.ItemDelay < 0 {
		errs = append(errs, errors.New("item delay cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	switch strings.ToLower(c.UI.Language) {
	case "en", "vi":
	default:
		errs = append(errs, fmt.Errorf("unsupported language %q", c.UI.Language))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Backend.BaseURL = baseURL
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Backend.Timeout = timeout
	}
	if proxy, ok := flags["proxy"].(string); ok && proxy != "" {
		c.Backend.Proxy = proxy
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.ConcurrentDownloads = concurrent
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if enabled, ok := flags["notifications-enabled"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if lang, ok := flags["language"].(string); ok && lang != "" {
		c.UI.Language = lang
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.UI.NoColor = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables that are already set
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igloader.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
