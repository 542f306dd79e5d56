package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"igloader/pkg/session"
)

// TUI runs the interactive viewer over a session
type TUI struct {
	program *tea.Program
	model   *Model
	viewer  Viewer
}

// NewTUI creates a TUI. Extra program options are passed to bubbletea.
func NewTUI(ctx context.Context, viewer Viewer, actions Actions, opts Options, programOpts ...tea.ProgramOption) *TUI {
	model := NewModel(ctx, viewer, actions, opts)
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)

	return &TUI{
		program: tea.NewProgram(model, programOpts...),
		model:   model,
		viewer:  viewer,
	}
}

// Start runs the program until the user quits. Session snapshots are
// forwarded to the program for as long as it runs.
func (t *TUI) Start() error {
	cancel := t.viewer.Subscribe(func(st session.State) {
		t.program.Send(StateMsg{State: st})
	})
	defer cancel()
	defer t.viewer.BindVisibility(nil)

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Model returns the underlying model
func (t *TUI) Model() *Model {
	return t.model
}
