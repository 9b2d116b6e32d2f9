// Package fields provides the text inputs used by the rewrite form and the
// settings panel, and a Form container that cycles focus between them.
package fields

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field is the interface every input implements. Fields are not tea.Model;
// they are managed by Form.
type Field interface {
	Label() string
	Value() string
	SetValue(string)
	Focus() tea.Cmd
	Blur()
	Focused() bool
	SetWidth(int)
	Update(tea.Msg) (Field, tea.Cmd)
	View() string
}

// -----------------------------------------------------------------------
// TextField
// -----------------------------------------------------------------------

// TextField wraps a textinput for single-line string input.
type TextField struct {
	label string
	input textinput.Model
}

const defaultInputWidth = 50

// NewTextField creates a single-line text field.
func NewTextField(label, placeholder string) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Width = defaultInputWidth
	ti.Prompt = ""
	return &TextField{label: label, input: ti}
}

// NewSecretField creates a single-line field whose value is masked.
func NewSecretField(label, placeholder string) *TextField {
	f := NewTextField(label, placeholder)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f *TextField) Label() string     { return f.label }
func (f *TextField) Value() string     { return f.input.Value() }
func (f *TextField) SetValue(v string) { f.input.SetValue(v) }
func (f *TextField) Focus() tea.Cmd    { return f.input.Focus() }
func (f *TextField) Blur()             { f.input.Blur() }
func (f *TextField) Focused() bool     { return f.input.Focused() }

// SetWidth sets the visible width in cells.
func (f *TextField) SetWidth(w int) {
	if w > 0 {
		f.input.Width = w
	}
}

func (f *TextField) Update(msg tea.Msg) (Field, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *TextField) View() string {
	return f.input.View()
}

// -----------------------------------------------------------------------
// TextAreaField
// -----------------------------------------------------------------------

// TextAreaField wraps a textarea for multi-line text input.
type TextAreaField struct {
	label string
	input textarea.Model
}

// NewTextAreaField creates a multi-line text area field.
func NewTextAreaField(label, placeholder string, height int) *TextAreaField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(defaultInputWidth)
	return &TextAreaField{label: label, input: ta}
}

func (f *TextAreaField) Label() string     { return f.label }
func (f *TextAreaField) Value() string     { return f.input.Value() }
func (f *TextAreaField) SetValue(v string) { f.input.SetValue(v) }
func (f *TextAreaField) Focus() tea.Cmd    { return f.input.Focus() }
func (f *TextAreaField) Blur()             { f.input.Blur() }
func (f *TextAreaField) Focused() bool     { return f.input.Focused() }

// SetWidth sets the visible width in cells.
func (f *TextAreaField) SetWidth(w int) {
	if w > 0 {
		f.input.SetWidth(w)
	}
}

func (f *TextAreaField) Update(msg tea.Msg) (Field, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *TextAreaField) View() string {
	return f.input.View()
}
