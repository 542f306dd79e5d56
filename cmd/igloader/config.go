package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igloader/pkg/auth"
	"igloader/pkg/config"
	"igloader/pkg/models"
	"igloader/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igloader configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGLOADER_*)
  - .env files (./.env and ~/.igloader.env)
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'igloader.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the configuration after merging flags, environment, .env files,
the configuration file and defaults. Proxy credentials are masked.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Backend URL and poll timings
  - Value ranges
  - Output and log path accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

const exampleConfig = `# igloader configuration file
#
# Every option can also be set with an IGLOADER_* environment variable,
# for example IGLOADER_BACKEND_URL or IGLOADER_OUTPUT_DIR.

# Backend job service
backend:
  base_url: "http://127.0.0.1:5000"
  # 0 waits as long as the backend needs (ZIP exports can be slow)
  timeout: 0s
  user_agent: "igloader/1.0"
  # forwarded with every request; stored settings fill empty fields
  proxy: ""
  doc_id: ""

# Background work of a profile lookup
polling:
  # tries to get the first page of posts, one second apart
  initial_page_attempts: 5
  initial_page_delay: 1s
  # pause before asking again after a page brought nothing new
  load_more_cooldown: 2s
  task_interval: 3s
  highlight_interval: 5s

rate_limit:
  requests_per_minute: 120
  burst_size: 10

# Retries of media downloads
retry:
  enabled: true
  max_attempts: 3
  initial_interval: 500ms
  max_interval: 5s
  multiplier: 1.5

output:
  base_directory: "./downloads"
  create_user_folders: true
  overwrite_existing: false
  # write a JSON sidecar next to every file
  write_metadata: true

download:
  # Range: 1-10
  concurrent_downloads: 3
  # pause between two items of a post or highlight
  item_delay: 500ms
  download_timeout: 60s
  # open the media URL in the browser when it cannot be saved
  open_fallback: true
  skip_videos: false
  skip_images: false

notifications:
  enabled: true
  on_complete: true
  on_error: true
  # terminal, desktop or none
  notification_type: "terminal"

logging:
  # debug, info, warn, error or disabled
  level: "info"
  file: ""
  console: true
  # errors are reported to sentry when set
  sentry_dsn: ""

ui:
  # en or vi
  language: "en"
  no_color: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "igloader.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(ui.Output, "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(ui.Output, "  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Point backend.base_url at your backend")
	fmt.Fprintln(ui.Output, "2. Run 'igloader config validate' to check the configuration")
	fmt.Fprintln(ui.Output, "3. Look something up with 'igloader @username'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	display := *cfg
	display.Backend.Proxy = maskProxy(display.Backend.Proxy)
	if display.Logging.SentryDSN != "" {
		display.Logging.SentryDSN = "********"
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	fmt.Fprintln(ui.Output, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output, "1. Command line flags")
	fmt.Fprintln(ui.Output, "2. Environment variables (IGLOADER_*)")
	fmt.Fprintln(ui.Output, "3. .env files")
	if configFile != "" {
		fmt.Fprintf(ui.Output, "4. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(ui.Output, "4. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(ui.Output, "5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		possiblePaths := []string{
			"igloader.yaml",
			"igloader.yml",
			".igloader.yaml",
			".igloader.yml",
			filepath.Join(os.Getenv("HOME"), ".igloader.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "igloader", "config.yaml"),
		}
		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
		if configFile == "" {
			return fmt.Errorf("no configuration file found, specify one with --config")
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(ui.Output, "  - %s\n", p)
		}
		return fmt.Errorf("%d problems found", len(problems))
	}

	var warnings []string
	if cfg.Download.ConcurrentDownloads > 1 && cfg.RateLimit.RequestsPerMinute < 30 {
		warnings = append(warnings, "a low rate limit will serialize concurrent downloads")
	}
	if cfg.Polling.LoadMoreCooldown == 0 {
		warnings = append(warnings, "load_more_cooldown is 0: pending pages are retried without pause")
	}
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Output, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Output)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  Backend: %s\n", cfg.Backend.BaseURL)
	fmt.Fprintf(ui.Output, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(ui.Output, "  Concurrent downloads: %d\n", cfg.Download.ConcurrentDownloads)
	fmt.Fprintf(ui.Output, "  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Fprintf(ui.Output, "  Polling: tasks every %s, highlights every %s\n", cfg.Polling.TaskInterval, cfg.Polling.HighlightInterval)
	fmt.Fprintf(ui.Output, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// maskProxy hides the password of a host:port:user:pass proxy
func maskProxy(proxy string) string {
	masked := auth.SanitizeEntry(&auth.Entry{Settings: models.Settings{Proxy: proxy}})
	return masked.Settings.Proxy
}
