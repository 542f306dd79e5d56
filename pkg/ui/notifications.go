package ui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=igloader", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
		$text = $template.GetElementsByTagName("text")
		$text.Item(0).AppendChild($template.CreateTextNode(%q)) | Out-Null
		$text.Item(1).AppendChild($template.CreateTextNode(%q)) | Out-Null
		$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igloader").Show($toast)
	`, title, message)
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// Notifier prints toasts to the terminal and mirrors them as desktop
// notifications when enabled
type Notifier struct {
	sender  NotificationSender
	desktop bool
}

// NewNotifier creates a Notifier for the current platform. Desktop
// notifications are only sent when desktop is true.
func NewNotifier(desktop bool) *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}

	return &Notifier{sender: sender, desktop: desktop}
}

// NewNotifierWithSender creates a Notifier that always uses sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender, desktop: sender != nil}
}

func (n *Notifier) send(title, message string) {
	if n.desktop && n.sender != nil {
		// desktop toasts are best effort
		_ = n.sender.Send(title, message)
	}
}

// SendNotification prints an informational toast
func (n *Notifier) SendNotification(title, message string) {
	fmt.Fprintf(Output, "\n%s: %s\n", Cyan(title), Yellow(message))
	n.send(title, message)
}

// SendError prints an error toast
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(Output, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess prints a success toast
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(Output, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

// ArchiveStarted announces a profile ZIP export
func (n *Notifier) ArchiveStarted(username string) {
	n.SendNotification("Export", fmt.Sprintf("Preparing archive of @%s", username))
}

// ArchiveSaved announces a finished export
func (n *Notifier) ArchiveSaved(path string, size string) {
	n.SendSuccess("Export complete", fmt.Sprintf("%s (%s)", filepath.Base(path), size))
}

// ArchiveFailed announces a failed export
func (n *Notifier) ArchiveFailed(err error) {
	n.SendError("Export failed", err.Error())
}
