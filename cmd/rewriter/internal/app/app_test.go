package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/rewriter/cmd/rewriter/internal/format"
	"github.com/germanamz/rewriter/cmd/rewriter/internal/msgs"
	"github.com/germanamz/rewriter/pkg/form"
	"github.com/germanamz/rewriter/pkg/rewrite"
	"github.com/germanamz/rewriter/pkg/settings"
)

type fakeRewriter struct {
	mu    sync.Mutex
	calls []rewrite.DraftRequest
	res   rewrite.Result
	err   error
}

func (f *fakeRewriter) Rewrite(_ context.Context, req rewrite.DraftRequest) (rewrite.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.res, f.err
}

func (f *fakeRewriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

type brokenStorage struct{}

func (brokenStorage) GetItem(context.Context, string) (string, bool, error) { return "", false, nil }
func (brokenStorage) SetItem(context.Context, string, string) error {
	return errors.New("disk full")
}

type harness struct {
	m     Model
	rw    *fakeRewriter
	cb    *fakeClipboard
	store *settings.Store
}

func newHarness(t *testing.T, storage settings.Storage) *harness {
	t.Helper()
	if storage == nil {
		storage = &settings.MemoryStorage{}
	}
	h := &harness{
		rw:    &fakeRewriter{},
		cb:    &fakeClipboard{},
		store: settings.Open(context.Background(), storage, nil),
	}
	h.m = New(context.Background(), Options{Client: h.rw, Store: h.store, Clipboard: h.cb, Server: "http://localhost:5000"})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 80})
	h.send(msgs.InitDrainMsg{})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(s string) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) fill() {
	h.typeText("meeting")
	h.key(tea.KeyTab)
	h.typeText("hi can we meet")
	h.key(tea.KeyTab)
	h.typeText("formal")
}

// drain runs cmd and returns every message it produces, expanding batches.
// Commands still running after a second are abandoned.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 16)
	var wg sync.WaitGroup
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				if sub != nil {
					wg.Add(1)
					go run(sub)
				}
			}
			return
		}
		if msg != nil {
			out <- msg
		}
	}
	wg.Add(1)
	go run(cmd)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	var msgList []tea.Msg
	for {
		select {
		case msg := <-out:
			msgList = append(msgList, msg)
		default:
			return msgList
		}
	}
}

func findMsg[T tea.Msg](msgList []tea.Msg) (T, bool) {
	for _, msg := range msgList {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (h *harness) submitAndComplete(t *testing.T) {
	t.Helper()
	cmd := h.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	done, ok := findMsg[msgs.SubmitCompleteMsg](drain(t, cmd))
	require.True(t, ok, "submit must produce a completion")
	h.send(done)
}

func TestApp_InputIgnoredUntilDrained(t *testing.T) {
	store := settings.Open(context.Background(), &settings.MemoryStorage{}, nil)
	m := New(context.Background(), Options{Client: &fakeRewriter{}, Store: store})
	assert.False(t, m.InputEnabled())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]11;rgb:ffff")})
	m = next.(Model)
	assert.Empty(t, m.Controller().Fields().Reason)

	next, _ = m.Update(msgs.InitDrainMsg{})
	assert.True(t, next.(Model).InputEnabled())
}

func TestApp_TypingUpdatesController(t *testing.T) {
	h := newHarness(t, nil)
	h.fill()

	f := h.m.Controller().Fields()
	assert.Equal(t, "meeting", f.Reason)
	assert.Equal(t, "hi can we meet", f.EmailText)
	assert.Equal(t, "formal", f.Instruction)
}

func TestApp_SubmitWithMissingFieldsSendsNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("meeting")

	cmd := h.key(tea.KeyCtrlS)

	assert.Nil(t, cmd)
	assert.Equal(t, 0, h.rw.count())
	assert.Equal(t, form.StateIdle, h.m.Controller().State())
	assert.Contains(t, h.m.View(), "Please fill in: Draft Email, Instructions")
}

func TestApp_SubmitRendersResult(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.res = rewrite.Result{Subject: "Meeting request", Recipient: "Prof. Lee", Sender: "Marco", Body: "Dear Prof. Lee,\ncould we meet?\n", Caution: "Date inferred"}
	h.fill()

	cmd := h.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	assert.True(t, h.m.Controller().Busy())
	assert.Contains(t, h.m.contentView(), "Rewriting...")

	done, ok := findMsg[msgs.SubmitCompleteMsg](drain(t, cmd))
	require.True(t, ok)
	h.send(done)

	require.Equal(t, 1, h.rw.count())
	assert.Equal(t, "meeting", h.rw.calls[0].Reason)
	assert.Equal(t, form.StateSucceeded, h.m.Controller().State())

	out := h.m.contentView()
	assert.Contains(t, out, "Subject: Meeting request")
	assert.Contains(t, out, "To: Prof. Lee")
	assert.Contains(t, out, "could we meet?")
	assert.Contains(t, out, "Date inferred")

	h.key(tea.KeyCtrlD)
	assert.Contains(t, h.m.contentView(), "+Dear Prof. Lee,")
	assert.Contains(t, h.m.contentView(), "-hi can we meet")
}

func TestApp_SubmitForwardsSettings(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.store.Save(context.Background(), settings.Settings{APIKey: " sk-1 ", Model: "m"}))
	h.fill()

	h.submitAndComplete(t)

	require.Equal(t, 1, h.rw.count())
	assert.Equal(t, "sk-1", h.rw.calls[0].APIKey)
	assert.Equal(t, "m", h.rw.calls[0].Model)
	assert.Empty(t, h.rw.calls[0].BaseURL)
}

func TestApp_SubmitDisabledWhileBusy(t *testing.T) {
	h := newHarness(t, nil)
	h.fill()

	first := h.key(tea.KeyCtrlS)
	require.NotNil(t, first)

	assert.Nil(t, h.key(tea.KeyCtrlS))
	assert.True(t, h.m.Controller().Busy())
}

func TestApp_EscAbandonsSubmission(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.res = rewrite.Result{Body: "late"}
	h.fill()

	cmd := h.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	h.key(tea.KeyEsc)
	assert.Equal(t, form.StateIdle, h.m.Controller().State())

	done, ok := findMsg[msgs.SubmitCompleteMsg](drain(t, cmd))
	require.True(t, ok)
	h.send(done)

	_, hasResult := h.m.Controller().Result()
	assert.False(t, hasResult, "abandoned completion must be dropped")
	assert.Contains(t, h.m.View(), "Rewrite cancelled")
}

func TestApp_ServerErrorShowsPanel(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.err = &rewrite.StatusError{Code: 500, Message: "boom"}
	h.fill()

	h.submitAndComplete(t)

	assert.Equal(t, form.StateFailed, h.m.Controller().State())
	assert.Contains(t, h.m.contentView(), "boom")
}

func TestApp_InResultErrorShowsRawContent(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.res = rewrite.Result{Error: "Failed to parse response", RawContent: "{not json"}
	h.fill()

	h.submitAndComplete(t)

	out := h.m.contentView()
	assert.Contains(t, out, "Failed to parse response")
	assert.Contains(t, out, "Raw Response:")
}

func TestApp_CopyShowsToastThenHides(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.res = rewrite.Result{Subject: "S", Body: "Hello"}
	h.fill()
	h.submitAndComplete(t)

	copied, ok := findMsg[msgs.CopyDoneMsg](drain(t, h.key(tea.KeyCtrlY)))
	require.True(t, ok)
	require.NoError(t, copied.Err)
	assert.Equal(t, "Hello", h.cb.text)

	var delay time.Duration
	h.m.tick = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		delay = d
		return func() tea.Msg { return fn(time.Now()) }
	}

	hide := h.send(copied)
	require.NotNil(t, hide)
	assert.Equal(t, form.CopyConfirmDuration, delay)
	assert.Equal(t, 1600*time.Millisecond, delay)
	assert.Contains(t, h.m.contentView(), format.CopiedToast)

	hidden, ok := hide().(msgs.HideCopiedMsg)
	require.True(t, ok)
	assert.Equal(t, copied.Token, hidden.Token)

	h.send(hidden)
	assert.NotContains(t, h.m.contentView(), format.CopiedToast)
}

func TestApp_CopyUnavailableForErrorResult(t *testing.T) {
	h := newHarness(t, nil)
	h.rw.res = rewrite.Result{Error: "Failed to parse response", RawContent: "{not json"}
	h.fill()
	h.submitAndComplete(t)
	h.cb.text = "previous clipboard"

	assert.False(t, h.m.keys.Copy.Enabled())
	assert.Nil(t, h.key(tea.KeyCtrlY))
	assert.Nil(t, h.m.copyResult())
	assert.Equal(t, "previous clipboard", h.cb.text)
	assert.False(t, h.m.Controller().Copied())
}

func TestApp_CopyWithoutResultDoesNothing(t *testing.T) {
	h := newHarness(t, nil)
	assert.Nil(t, h.key(tea.KeyCtrlY))
	assert.Empty(t, h.cb.text)
}

func TestApp_SettingsWriteThrough(t *testing.T) {
	mem := &settings.MemoryStorage{}
	h := newHarness(t, mem)

	h.key(tea.KeyCtrlO)
	cmd := h.typeText("sk-secret")

	saved, ok := findMsg[msgs.SettingsSavedMsg](drain(t, cmd))
	require.True(t, ok)
	require.NoError(t, saved.Err)
	h.send(saved)

	raw, found, err := mem.GetItem(context.Background(), settings.StorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"api_key":"sk-secret","model":"","base_url":""}`, raw)
	assert.NotContains(t, h.m.View(), "sk-secret", "api key must be masked")

	h.key(tea.KeyTab)
	drain(t, h.typeText("my-model"))
	assert.Equal(t, "my-model", h.store.Current().Model)

	h.key(tea.KeyEsc)
	h.typeText("x")
	assert.Equal(t, "x", h.m.Controller().Fields().Reason, "esc returns focus to the draft")
}

func TestApp_SettingsLoadedIntoPanel(t *testing.T) {
	mem := &settings.MemoryStorage{}
	require.NoError(t, mem.SetItem(context.Background(), settings.StorageKey, `{"model":"stored-model"}`))
	h := newHarness(t, mem)

	h.key(tea.KeyCtrlO)

	assert.Contains(t, h.m.contentView(), "stored-model")
}

func TestApp_SettingsSaveFailureShowsError(t *testing.T) {
	h := newHarness(t, brokenStorage{})

	h.key(tea.KeyCtrlO)
	saved, ok := findMsg[msgs.SettingsSavedMsg](drain(t, h.typeText("k")))
	require.True(t, ok)
	require.Error(t, saved.Err)
	h.send(saved)

	assert.Contains(t, h.m.Controller().Err(), "Failed to save settings")
	assert.Equal(t, "k", h.store.Current().APIKey)
}

func TestApp_HelpToggle(t *testing.T) {
	h := newHarness(t, nil)

	h.key(tea.KeyCtrlG)
	assert.True(t, h.m.showHelp)
	assert.NotContains(t, h.m.contentView(), rewrite.LabelReason)

	h.typeText("ignored")
	assert.Empty(t, h.m.Controller().Fields().Reason)

	h.key(tea.KeyEsc)
	assert.False(t, h.m.showHelp)
	assert.Contains(t, h.m.contentView(), rewrite.LabelReason)
}

func TestApp_CtrlCQuits(t *testing.T) {
	h := newHarness(t, nil)
	cmd := h.key(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
