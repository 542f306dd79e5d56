package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igloader/pkg/auth"
	"igloader/pkg/models"
	"igloader/pkg/ui"
)

var (
	settingsInput  models.Settings
	promptPassword bool
	clearAll       bool
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the settings forwarded to the backend",
	Long: `Manage the settings object sent with every backend request.

Settings are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your settings file or passphrase!`,
	Run: func(cmd *cobra.Command, args []string) {
		auth.WriteSettingsGuide(ui.Output)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Store backend settings securely",
	Long: `Store backend settings in the system keychain or an encrypted file.

Without flags you are prompted for every field; press Enter to leave one
empty. The password is never echoed.`,
	Example: `  # Interactive
  igloader settings set

  # Proxy only, stored as the default entry
  igloader settings set --proxy 10.0.0.1:8080:user:secret

  # A second named entry with a hidden password prompt
  igloader settings set work --username me --password-prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSet,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show stored settings with secrets masked",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsShow,
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear [name]",
	Short: "Remove stored settings",
	Example: `  igloader settings clear
  igloader settings clear work
  igloader settings clear --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsClear,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd, settingsShowCmd, settingsClearCmd)

	settingsSetCmd.Flags().StringVar(&settingsInput.DocID, "doc-id", "", "GraphQL document id")
	settingsSetCmd.Flags().StringVar(&settingsInput.Username, "username", "", "account username")
	settingsSetCmd.Flags().BoolVar(&promptPassword, "password-prompt", false, "prompt for the account password")

	settingsClearCmd.Flags().BoolVar(&clearAll, "all", false, "remove every stored entry")
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize settings store: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	settings := settingsInput
	// the proxy comes from the global --proxy flag
	settings.Proxy = proxy

	interactive := settings.IsZero() && !promptPassword
	reader := bufio.NewReader(os.Stdin)
	if interactive {
		auth.WriteSettingsGuide(ui.Output)
		fmt.Fprintln(ui.Output)
		settings.Proxy = prompt(reader, "Proxy")
		settings.DocID = prompt(reader, "Doc ID")
		settings.Username = prompt(reader, "Username")
	}
	if interactive || promptPassword {
		fmt.Fprint(ui.Output, "Password (hidden): ")
		password, err := readPassword(reader)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		settings.Password = password
	}

	entry := &auth.Entry{Name: name, Settings: settings, LastModified: time.Now()}
	if err := manager.Store(entry); err != nil {
		if errors.Is(err, auth.ErrInvalidSettings) {
			return errors.New("nothing to store: give at least one setting")
		}
		return fmt.Errorf("failed to store settings: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Settings saved: %s", name))
	printEntry(auth.SanitizeEntry(entry))
	return nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize settings store: %w", err)
	}

	if len(args) > 0 {
		entry, err := manager.Retrieve(args[0])
		if err != nil {
			return fmt.Errorf("settings %q not found", args[0])
		}
		printEntry(auth.SanitizeEntry(entry))
		return nil
	}

	entries, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list settings: %w", err)
	}
	if len(entries) == 0 {
		ui.PrintInfo("No stored settings", "use 'igloader settings set' to add some")
		return nil
	}

	ui.PrintHighlight("Stored Settings")
	for _, entry := range entries {
		printEntry(auth.SanitizeEntry(entry))
	}
	return nil
}

func runSettingsClear(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize settings store: %w", err)
	}

	if clearAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove settings: %w", err)
		}
		ui.PrintSuccess("All settings removed")
		return nil
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		if errors.Is(err, auth.ErrSettingsNotFound) {
			return fmt.Errorf("settings %q not found", name)
		}
		return fmt.Errorf("failed to remove settings: %w", err)
	}
	ui.PrintSuccess("Settings removed: " + name)
	return nil
}

func printEntry(entry *auth.Entry) {
	fmt.Fprintf(ui.Output, "\n%s\n", ui.Bold(entry.Name))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(ui.Output, "   %-9s %s\n", label+":", value)
		}
	}
	field("Proxy", entry.Settings.Proxy)
	field("Doc ID", entry.Settings.DocID)
	field("Username", entry.Settings.Username)
	field("Password", entry.Settings.Password)
	if !entry.LastModified.IsZero() {
		field("Modified", entry.LastModified.Format("2006-01-02 15:04:05"))
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Fprintf(ui.Output, "%s: ", label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads a password from stdin without echoing
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Output)
		if err == nil {
			return string(password), nil
		}
	}

	// piped input
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
