package main

import (
	"io"

	"github.com/spf13/cobra"

	"igloader/pkg/config"
	"igloader/pkg/ui"
	"igloader/pkg/ui/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [term]",
	Short: "Open the interactive viewer",
	Long: `Open the interactive viewer.

Type a post link, an @username or a highlight link and press enter. Profiles
show a grid that keeps loading posts as you move to its last row; highlights
play as a slideshow. Press ? for all keys.`,
	Example: `  igloader tui
  igloader tui @nasa`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// the alt screen owns the terminal, so console logging is turned off
	a, err := newApp(cmd, func(cfg *config.Config) {
		if cfg.Logging.File == "" {
			cfg.Logging.Level = "disabled"
		}
		cfg.Logging.Console = false
	})
	if err != nil {
		return err
	}
	defer a.Close()

	out := ui.Output
	ui.Output = io.Discard
	defer func() { ui.Output = out }()

	opts := tui.Options{
		SlideInterval: tui.DefaultSlideInterval,
		Proxy:         a.client.ProxyImageURL,
	}
	if len(args) == 1 {
		opts.Query = args[0]
	}

	a.log.Info("Starting interactive viewer")
	return tui.NewTUI(cmd.Context(), a.session, a, opts).Start()
}
