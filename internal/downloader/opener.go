package downloader

import (
	"os/exec"
	"runtime"
)

// Opener hands a URL to something that can show it, usually the browser.
// It is the fallback when a media file cannot be saved.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// SystemOpener opens URLs with the platform's default handler
type SystemOpener struct{}

func (SystemOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
