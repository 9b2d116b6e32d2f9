package msgs

import (
	"time"

	"github.com/germanamz/rewriter/pkg/rewrite"
)

// SubmitCompleteMsg is returned by the tea.Cmd that calls the rewriting
// service.
type SubmitCompleteMsg struct {
	ID       uint64
	Result   rewrite.Result
	Err      error
	Duration time.Duration
}

// CopyDoneMsg reports a clipboard write.
type CopyDoneMsg struct {
	Token uint64
	Err   error
}

// HideCopiedMsg fires once the copy confirmation has been visible long enough.
type HideCopiedMsg struct {
	Token uint64
}

// SettingsSavedMsg reports the outcome of a write-through settings save.
type SettingsSavedMsg struct {
	Err error
}

// InitDrainMsg fires after a short delay so that stale terminal responses
// (e.g. OSC 11 background-color replies) are discarded before focusing input.
type InitDrainMsg struct{}
