// Package tty keeps stray terminal responses out of the form inputs.
package tty

import tea "github.com/charmbracelet/bubbletea"

// NewStaleEscapeFilter returns a tea.WithFilter callback that suppresses all
// key input while input is disabled (during the post-startup drain window).
// The isInputEnabled predicate is called on each message.
//
// Late-arriving escape sequence fragments (OSC 11 background-color replies,
// cursor position reports) would otherwise be typed into the focused field.
// Ctrl+C is always allowed through so the user can exit.
func NewStaleEscapeFilter(isInputEnabled func(tea.Model) bool) func(tea.Model, tea.Msg) tea.Msg {
	return func(m tea.Model, msg tea.Msg) tea.Msg {
		if isInputEnabled(m) {
			return msg
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.Type == tea.KeyCtrlC {
				return msg
			}
			return nil
		case tea.MouseMsg:
			return nil
		}

		return msg
	}
}
