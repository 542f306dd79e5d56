package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"igloader/internal/downloader"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// ProgressDisplay renders a single updating progress line for a batch of
// downloads. Track has the downloader.Progress signature.
type ProgressDisplay struct {
	mu         sync.Mutex
	label      string
	total      int
	done       int
	downloaded int
	skipped    int
	failed     int
	bytes      int64
	current    string
	startTime  time.Time
	verbose    bool
}

// NewProgressDisplay creates a display for total items under label
func NewProgressDisplay(label string, total int, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		label:     label,
		total:     total,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// Track records one finished item
func (p *ProgressDisplay) Track(done, total int, r downloader.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = done
	p.total = total
	p.current = r.Job.Name

	switch {
	case r.Skipped:
		p.skipped++
	case r.Success:
		p.downloaded++
		p.bytes += r.Size
	default:
		p.failed++
	}

	if p.verbose {
		p.printItem(r)
		return
	}
	fmt.Fprintf(Output, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

// line builds the progress line. Callers hold p.mu.
func (p *ProgressDisplay) line() string {
	filled := 0
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %s • %s",
		Cyan(p.label),
		bar,
		p.done,
		p.total,
		humanize.Bytes(uint64(p.bytes)),
		p.eta(),
	)
	if p.current != "" {
		line += " • " + p.current
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d errors", p.failed))
	}
	return line
}

func (p *ProgressDisplay) printItem(r downloader.Result) {
	switch {
	case r.Skipped:
		fmt.Fprintf(Output, "%s %s %s\n", Dim("="), r.Job.Name, Dim("already present"))
	case r.Success:
		fmt.Fprintf(Output, "%s %s • %s\n", Green("✓"), r.Job.Name, humanize.Bytes(uint64(r.Size)))
	case r.Opened:
		fmt.Fprintf(Output, "%s %s • %s\n", Yellow("↗"), r.Job.Name, Dim("opened in browser"))
	default:
		fmt.Fprintf(Output, "%s %s - %v\n", Red("✗"), r.Job.Name, r.Error)
	}
}

// eta estimates the time remaining. Callers hold p.mu.
func (p *ProgressDisplay) eta() string {
	if p.done == 0 || p.done >= p.total {
		return "--"
	}
	perItem := time.Since(p.startTime) / time.Duration(p.done)
	return formatDuration(perItem * time.Duration(p.total-p.done))
}

// Complete prints the summary of the batch
func (p *ProgressDisplay) Complete(summary downloader.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	fmt.Fprintf(Output, "\n%s %s: %s in %s\n",
		Green("✓"),
		p.label,
		summary.String(),
		formatDuration(elapsed),
	)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
