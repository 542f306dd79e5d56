package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Back        key.Binding
	Search      key.Binding
	Submit      key.Binding
	SwitchFocus key.Binding
	Left        key.Binding
	Right       key.Binding
	Up          key.Binding
	Down        key.Binding
	Owner       key.Binding
	Download    key.Binding
	DownloadAll key.Binding
	Export      key.Binding
	Clear       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		SwitchFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "posts/highlights")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Right:       key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/l", "next")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Owner:       key.NewBinding(key.WithKeys("o", "@"), key.WithHelp("o", "owner profile")),
		Download:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		DownloadAll: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download loaded posts")),
		Export:      key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "export zip")),
		Clear:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Submit, k.Back, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Submit, k.Back, k.SwitchFocus},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Owner, k.Download, k.DownloadAll, k.Export},
		{k.Clear, k.Help, k.Quit},
	}
}
