package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/fields"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/format"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/msgs"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/styles"
	"github.com/germanamz/rewriter/pkg/form"
	"github.com/germanamz/rewriter/pkg/rewrite"
	"github.com/germanamz/rewriter/pkg/settings"
)

// Options are the collaborators of the root model.
type Options struct {
	Client    rewrite.Rewriter
	Store     *settings.Store
	Clipboard form.Clipboard
	Logger    *slog.Logger
	// Server is shown in the header.
	Server string
}

// draftFields maps the draft form's field positions to controller fields.
var draftFields = []form.Field{form.FieldReason, form.FieldEmailText, form.FieldInstruction}

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger

	ctrl         *form.Controller
	draft        *fields.Form
	settingsForm *fields.Form

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	inputEnabled bool
	settingsOpen bool
	showHelp     bool
	showDiff     bool
	scrollToEnd  bool

	cancelSubmit context.CancelFunc
	submitStart  time.Time
	lastDuration time.Duration
	rewritingMsg string
	notice       string

	width  int
	height int

	// tick schedules delayed messages; tea.Tick outside tests.
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New creates the root model. The draft form is focused once the startup
// drain window has passed.
func New(ctx context.Context, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	draft := fields.NewForm(
		fields.NewTextAreaField(rewrite.LabelReason, "Why are you writing this email?", 2),
		fields.NewTextAreaField(rewrite.LabelEmailText, "Paste your draft email here", 8),
		fields.NewTextAreaField(rewrite.LabelInstruction, "e.g. Make it formal and concise", 3),
	)

	current := opts.Store.Current()
	sf := make([]fields.Field, 0, len(settings.Fields))
	for _, f := range settings.Fields {
		var field *fields.TextField
		if f == settings.FieldAPIKey {
			field = fields.NewSecretField(f.Label(), f.Placeholder())
		} else {
			field = fields.NewTextField(f.Label(), f.Placeholder())
		}
		field.SetValue(current.Get(f))
		sf = append(sf, field)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: format.SpinnerFrames, FPS: time.Second / 10}
	sp.Style = styles.SpinnerStyle

	keys := newKeyMap()
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{PageUp: keys.ScrollUp, PageDown: keys.ScrollDn}

	return Model{
		ctx:          ctx,
		opts:         opts,
		log:          log,
		ctrl:         form.New(),
		draft:        draft,
		settingsForm: fields.NewForm(sf...),
		keys:         keys,
		help:         help.New(),
		spinner:      sp,
		viewport:     vp,
		tick:         tea.Tick,
	}
}

// InputEnabled reports whether key input is accepted. Used by the
// tty.NewStaleEscapeFilter closure.
func (m Model) InputEnabled() bool {
	return m.inputEnabled
}

// Controller exposes the form state controller.
func (m Model) Controller() *form.Controller {
	return m.ctrl
}

func (m Model) Init() tea.Cmd {
	// Delay focusing the form so that stale terminal escape-sequence
	// responses (e.g. OSC 11 background-color) are drained first.
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return msgs.InitDrainMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncKeys()
	m.syncViewport()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd

	case msgs.InitDrainMsg:
		m.inputEnabled = true
		return m.draft.Focus()

	case msgs.SubmitCompleteMsg:
		return m.handleSubmitComplete(msg)

	case msgs.CopyDoneMsg:
		if msg.Err != nil {
			m.log.Warn("clipboard write failed", "error", msg.Err)
			return nil
		}
		token := msg.Token
		return m.tick(form.CopyConfirmDuration, func(time.Time) tea.Msg {
			return msgs.HideCopiedMsg{Token: token}
		})

	case msgs.HideCopiedMsg:
		m.ctrl.HideCopied(msg.Token)
		return nil

	case msgs.SettingsSavedMsg:
		if msg.Err != nil {
			m.log.Warn("settings save failed", "error", msg.Err)
			m.ctrl.SetErr("Failed to save settings: " + msg.Err.Error())
		}
		return nil

	case spinner.TickMsg:
		if !m.ctrl.Busy() {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	return m.forwardInput(msg)
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	format.InitMarkdownRenderer(m.width - 4)
	m.help.Width = m.width
	m.layoutForms()
}

// layoutForms sizes the draft form and the settings sidebar for the current
// width.
func (m *Model) layoutForms() {
	if m.width == 0 {
		return
	}
	if m.settingsOpen {
		side := max(m.width/3, 30)
		m.settingsForm.SetWidth(side - 6)
		m.draft.SetWidth(max(m.width-side-4, 20))
		return
	}
	m.draft.SetWidth(max(m.width-4, 20))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		if m.cancelSubmit != nil {
			m.cancelSubmit()
		}
		return tea.Quit
	}

	if !m.inputEnabled {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.viewport.GotoTop()
		return nil

	case key.Matches(msg, m.keys.Cancel):
		return m.handleEscape()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Copy):
		return m.copyResult()

	case key.Matches(msg, m.keys.Diff):
		m.showDiff = !m.showDiff
		return nil

	case key.Matches(msg, m.keys.Settings):
		return m.toggleSettings()

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}

	// Shortcuts that are currently disabled must not reach the inputs either;
	// the textarea binds ctrl+d to delete.
	if m.showHelp || reserved(msg) {
		return nil
	}

	m.notice = ""
	return m.forwardInput(msg)
}

// handleEscape closes the topmost thing: help, then a running submission,
// then the settings panel.
func (m *Model) handleEscape() tea.Cmd {
	switch {
	case m.showHelp:
		m.showHelp = false
	case m.ctrl.Busy():
		if m.cancelSubmit != nil {
			m.cancelSubmit()
			m.cancelSubmit = nil
		}
		m.ctrl.Abandon()
		m.notice = "Rewrite cancelled"
		m.log.Info("submission abandoned")
	case m.settingsOpen:
		return m.toggleSettings()
	}
	return nil
}

func (m *Model) toggleSettings() tea.Cmd {
	m.settingsOpen = !m.settingsOpen
	m.layoutForms()
	if m.settingsOpen {
		m.draft.Blur()
		return m.settingsForm.Focus()
	}
	m.settingsForm.Blur()
	return m.draft.Focus()
}

// forwardInput sends msg to whichever form holds focus. Draft edits go to
// the controller; settings edits are staged and flushed right away.
func (m *Model) forwardInput(msg tea.Msg) tea.Cmd {
	if m.settingsOpen {
		cmd, changed := m.settingsForm.Update(msg)
		if !changed {
			return cmd
		}
		f := settings.Fields[m.settingsForm.Index()]
		m.opts.Store.Stage(f, m.settingsForm.Current().Value())
		return tea.Batch(cmd, m.flushSettings())
	}

	cmd, changed := m.draft.Update(msg)
	if changed {
		m.ctrl.SetField(draftFields[m.draft.Index()], m.draft.Current().Value())
	}
	return cmd
}

func (m *Model) flushSettings() tea.Cmd {
	ctx, store := m.ctx, m.opts.Store
	return func() tea.Msg {
		return msgs.SettingsSavedMsg{Err: store.Flush(ctx)}
	}
}

func (m *Model) submit() tea.Cmd {
	sub, err := m.ctrl.Begin(m.opts.Store.Current())
	if err != nil {
		var mf *rewrite.MissingFieldsError
		if errors.As(err, &mf) {
			m.notice = "Please fill in: " + strings.Join(mf.Labels, ", ")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelSubmit = cancel
	m.submitStart = time.Now()
	m.rewritingMsg = format.RandomRewritingMessage()
	m.showDiff = false
	m.notice = ""
	m.log.Info("submission started", "id", sub.ID)

	client, start := m.opts.Client, m.submitStart
	send := func() tea.Msg {
		res, err := client.Rewrite(ctx, sub.Request)
		return msgs.SubmitCompleteMsg{ID: sub.ID, Result: res, Err: err, Duration: time.Since(start)}
	}

	return tea.Batch(send, m.spinner.Tick)
}

func (m *Model) handleSubmitComplete(msg msgs.SubmitCompleteMsg) tea.Cmd {
	// Completions of abandoned submissions are dropped by the controller.
	if !m.ctrl.Finish(msg.ID, msg.Result, msg.Err) {
		m.log.Debug("stale completion ignored", "id", msg.ID)
		return nil
	}

	if m.cancelSubmit != nil {
		m.cancelSubmit()
		m.cancelSubmit = nil
	}
	m.lastDuration = msg.Duration
	m.scrollToEnd = true

	if msg.Err != nil {
		m.log.Warn("submission failed", "id", msg.ID, "error", msg.Err)
	} else {
		m.log.Info("submission done", "id", msg.ID, "duration", msg.Duration, "result_error", msg.Result.Failed())
	}

	return nil
}

func (m *Model) copyResult() tea.Cmd {
	res, ok := m.ctrl.Result()
	if !ok || res.Failed() || m.opts.Clipboard == nil {
		return nil
	}
	ctrl, cb := m.ctrl, m.opts.Clipboard
	return func() tea.Msg {
		token, err := ctrl.Copy(cb)
		return msgs.CopyDoneMsg{Token: token, Err: err}
	}
}

// syncKeys enables only the shortcuts that currently do something.
func (m *Model) syncKeys() {
	res, hasResult := m.ctrl.Result()
	busy := m.ctrl.Busy()

	m.keys.Submit.SetEnabled(!busy)
	m.keys.Cancel.SetEnabled(busy || m.settingsOpen || m.showHelp)
	m.keys.Copy.SetEnabled(hasResult && !res.Failed())
	m.keys.Diff.SetEnabled(hasResult)
}

func (m *Model) syncViewport() {
	if m.width == 0 {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-lipgloss.Height(m.headerView())-lipgloss.Height(m.footerView()), 3)
	m.viewport.SetContent(m.contentView())
	if m.scrollToEnd {
		m.viewport.GotoBottom()
		m.scrollToEnd = false
	}
}

func reserved(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+s", "ctrl+y", "ctrl+d", "ctrl+o", "ctrl+g":
		return true
	}
	return false
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m Model) headerView() string {
	title := styles.TitleStyle.Render("✉ Email Rewriter")
	if m.opts.Server == "" {
		return title
	}
	return title + "  " + styles.SubtitleStyle.Render(m.opts.Server)
}

func (m Model) footerView() string {
	return m.statusView() + "\n" + m.help.View(m.keys)
}

func (m Model) contentView() string {
	if m.showHelp {
		return format.RenderMarkdown(helpMarkdown)
	}

	left := m.draft.View() + "\n\n" + m.submitButton()
	body := left
	if m.settingsOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", m.sidebarView())
	}

	parts := []string{body}

	if msg := m.ctrl.Err(); msg != "" {
		parts = append(parts, format.RenderError("Error", msg, "", m.width))
	}

	if res, ok := m.ctrl.Result(); ok {
		parts = append(parts, format.RenderResult(res, format.ResultView{
			Width:    m.width,
			Copied:   m.ctrl.Copied(),
			ShowDiff: m.showDiff,
			Draft:    m.ctrl.LastRequest().EmailText,
		}))
	}

	return strings.Join(parts, "\n\n")
}

func (m Model) submitButton() string {
	if m.ctrl.Busy() {
		return styles.DimStyle.Render("[ " + m.spinner.View() + " Rewriting... ]")
	}
	return styles.TitleStyle.Render("[ Rewrite Email ]") + " " + styles.DimStyle.Render("ctrl+s")
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(styles.SidebarTitleStyle.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(m.settingsForm.View())
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("Saved as you type. Blank values use the service defaults."))

	return styles.SidebarStyle.Width(max(m.width/3, 30) - 2).Render(b.String())
}

func (m Model) statusView() string {
	var line string
	switch {
	case m.ctrl.Busy():
		line = m.spinner.View() + " " + m.rewritingMsg + " " + format.FmtDuration(time.Since(m.submitStart))
	case m.notice != "":
		line = m.notice
	case m.lastDuration > 0:
		line = m.ctrl.State().String() + " in " + format.FmtDuration(m.lastDuration)
	default:
		line = "Fill in all fields and press ctrl+s"
	}
	return styles.StatusStyle.Render(format.Truncate(line, m.width))
}
