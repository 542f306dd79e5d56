package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"igloader/pkg/auth"
	errs "igloader/pkg/errors"
	"igloader/pkg/search"
	"igloader/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	baseURL       string
	proxy         string
	outputDir     string
	language      string
	noColor       bool
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igloader [post URL | @username | highlight URL]",
	Short: "Browse and download Instagram posts, profiles and highlights",
	Long: `igloader talks to an igloader backend to look up Instagram content.

Give it a post link, a username or a highlight link and it shows what it
finds. Profiles are fetched page by page while the backend works through
them in the background, and can be exported as a single ZIP once the
backend has collected every post.

Features:
  - Post, profile and highlight lookups from a single input
  - Incremental profile pagination with a finished-archive export
  - Concurrent media downloads with metadata sidecars
  - An interactive terminal viewer (igloader tui)
  - Backend settings kept in the system keychain or an encrypted file`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetNoColor(noColor)
		if quiet {
			logLevel = "error"
		}

		switch cmd.Name() {
		case "version", "help", "completion", "tui":
			return
		}
		if !quiet {
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		q := search.Classify(args[0])
		return runLookup(cmd, q.Mode, q.Term, lookupOpts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.PrintError("Error", errs.Message(err))
		switch errs.TypeOf(err) {
		case errs.ErrorTypeAuth, errs.ErrorTypeRateLimit:
			fmt.Fprintln(ui.Output, ui.Dim(auth.QuickSettingsHint))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igloader.yaml or ~/.config/igloader/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "backend", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&proxy, "proxy", "", "proxy forwarded to the backend (host:port:user:pass)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "language of validation messages (en, vi)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "list every downloaded file")

	rootCmd.SetVersionTemplate(`igloader {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// flagMap collects the global flags that override configuration
func flagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if proxy != "" {
		flags["proxy"] = proxy
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if language != "" {
		flags["language"] = language
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if noColor {
		flags["no-color"] = true
	}
	if cmd != nil && cmd.Flags().Changed("notifications") {
		flags["notifications-enabled"] = notifications
	}
	return flags
}
