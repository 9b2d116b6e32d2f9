package fields

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/styles"
)

// Form holds a fixed list of fields with Tab/Shift-Tab navigation. Only the
// focused field receives input.
type Form struct {
	Fields []Field
	focus  int
	active bool
	width  int
}

// NewForm creates a form; no field is focused until Focus is called.
func NewForm(fields ...Field) *Form {
	return &Form{Fields: fields}
}

// Focus focuses the current field.
func (f *Form) Focus() tea.Cmd {
	if len(f.Fields) == 0 {
		return nil
	}
	f.active = true
	return f.Fields[f.focus].Focus()
}

// Blur removes focus from every field.
func (f *Form) Blur() {
	f.active = false
	for _, field := range f.Fields {
		field.Blur()
	}
}

// Active reports whether the form holds focus.
func (f *Form) Active() bool { return f.active }

// Index returns the position of the current field.
func (f *Form) Index() int { return f.focus }

// Current returns the current field, or nil for an empty form.
func (f *Form) Current() Field {
	if len(f.Fields) == 0 {
		return nil
	}
	return f.Fields[f.focus]
}

// Next moves focus to the following field, wrapping around.
func (f *Form) Next() tea.Cmd { return f.move(1) }

// Prev moves focus to the preceding field, wrapping around.
func (f *Form) Prev() tea.Cmd { return f.move(-1) }

func (f *Form) move(delta int) tea.Cmd {
	n := len(f.Fields)
	if n == 0 {
		return nil
	}
	f.Fields[f.focus].Blur()
	f.focus = (f.focus + delta + n) % n
	if !f.active {
		return nil
	}
	return f.Fields[f.focus].Focus()
}

// SetWidth resizes every field to w cells, border excluded.
func (f *Form) SetWidth(w int) {
	f.width = w
	for _, field := range f.Fields {
		field.SetWidth(w)
	}
}

// Update handles Tab/Shift-Tab and forwards everything else to the focused
// field. changed reports whether the focused field's value was modified.
func (f *Form) Update(msg tea.Msg) (cmd tea.Cmd, changed bool) {
	if !f.active || len(f.Fields) == 0 {
		return nil, false
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab":
			return f.Next(), false
		case "shift+tab":
			return f.Prev(), false
		}
	}

	field := f.Fields[f.focus]
	before := field.Value()
	updated, cmd := field.Update(msg)
	f.Fields[f.focus] = updated

	return cmd, updated.Value() != before
}

// View renders each field below its label inside a rounded border. The
// focused field uses the accent color.
func (f *Form) View() string {
	var b strings.Builder
	for i, field := range f.Fields {
		label := styles.LabelStyle
		border := styles.BlurredBorder
		if f.active && i == f.focus {
			label = styles.FocusedLabelStyle
			border = styles.FocusedBorder
		}
		if f.width > 0 {
			border = border.Width(f.width)
		}
		b.WriteString(label.Render(field.Label()))
		b.WriteString("\n")
		b.WriteString(border.Render(field.View()))
		if i < len(f.Fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
