// Package form implements the rewrite form's state controller: the three
// required draft fields, the submission lifecycle and the single error
// surface shared by transport failures and clipboard failures.
//
// The lifecycle is idle → submitting → succeeded | failed. A new submission
// may start from any state except submitting; it clears the previous result
// and error before the request is built. Every submission gets an id and only
// the latest one may complete, so a slow response can never overwrite the
// outcome of a newer submission.
//
// The Controller does no I/O of its own. Begin hands back the request to send
// and Finish applies the outcome, which lets a bubbletea program run the HTTP
// call in a tea.Cmd. Submit wraps both for synchronous callers.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/germanamz/rewriter/pkg/rewrite"
	"github.com/germanamz/rewriter/pkg/settings"
)

// CopyConfirmDuration is how long the copied indicator stays visible.
const CopyConfirmDuration = 1600 * time.Millisecond

// CopyFailedMessage is shown when the clipboard rejects a write.
const CopyFailedMessage = "Failed to copy to clipboard"

var (
	// ErrBusy is returned by Begin while a submission is in flight.
	ErrBusy = errors.New("form: submission in progress")
	// ErrNothingToCopy is returned by Copy without a successful result body.
	ErrNothingToCopy = errors.New("form: nothing to copy")
	// ErrStaleCopy is returned by Copy when a new submission replaced the
	// result while the clipboard was written.
	ErrStaleCopy = errors.New("form: result replaced during copy")
)

// State is the submission lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Field names one of the three draft inputs.
type Field int

const (
	FieldReason Field = iota
	FieldEmailText
	FieldInstruction
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Submission is a started request: its id and the payload to send.
type Submission struct {
	ID      uint64
	Request rewrite.DraftRequest
}

// Controller owns the draft fields and the submission lifecycle. It is safe
// for concurrent use.
type Controller struct {
	mu          sync.Mutex
	fields      rewrite.Fields
	state       State
	result      *rewrite.Result
	errMsg      string
	submission  uint64
	copied      bool
	copyToken   uint64
	lastRequest rewrite.DraftRequest
}

// New returns an idle controller with empty fields.
func New() *Controller {
	return &Controller{state: StateIdle}
}

// SetField updates one draft field.
func (c *Controller) SetField(f Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch f {
	case FieldReason:
		c.fields.Reason = value
	case FieldEmailText:
		c.fields.EmailText = value
	case FieldInstruction:
		c.fields.Instruction = value
	}
}

// SetFields replaces all draft fields.
func (c *Controller) SetFields(f rewrite.Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = f
}

// Fields returns the current draft.
func (c *Controller) Fields() rewrite.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fields
}

// Begin starts a submission. It fails without changing state when a required
// field is blank (a *rewrite.MissingFieldsError) or when a submission is
// already in flight (ErrBusy). Otherwise the previous result and error are
// cleared, the state becomes StateSubmitting and the request to send is
// returned.
func (c *Controller) Begin(s settings.Settings) (Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return Submission{}, ErrBusy
	}

	if err := c.fields.Validate(); err != nil {
		return Submission{}, err
	}

	c.submission++
	c.state = StateSubmitting
	c.result = nil
	c.errMsg = ""
	c.copied = false
	c.lastRequest = rewrite.NewDraftRequest(c.fields, s.Overrides())

	return Submission{ID: c.submission, Request: c.lastRequest}, nil
}

// Abandon starts a fresh submission id without a request, so that any
// in-flight completion is dropped. The state returns to idle.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSubmitting {
		return
	}

	c.submission++
	c.state = StateIdle
}

// Finish applies the outcome of submission id and reports whether it was
// applied. Outcomes of anything but the latest submission are dropped.
//
// A nil err means the service answered with a 2xx status: the result is
// stored and the state becomes StateSucceeded, even when the result itself
// carries an error descriptor. A non-nil err moves to StateFailed with the
// message chosen by rewrite.Message.
func (c *Controller) Finish(id uint64, res rewrite.Result, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.submission || c.state != StateSubmitting {
		return false
	}

	if err != nil {
		c.state = StateFailed
		c.errMsg = rewrite.Message(err)
		return true
	}

	c.state = StateSucceeded
	r := res
	c.result = &r

	return true
}

// Submit runs a whole submission synchronously.
func (c *Controller) Submit(ctx context.Context, r rewrite.Rewriter, s settings.Settings) error {
	sub, err := c.Begin(s)
	if err != nil {
		return err
	}

	res, err := r.Rewrite(ctx, sub.Request)
	c.Finish(sub.ID, res, err)

	return err
}

// Copy writes the result body to cb and turns the copied indicator on. The
// returned token is passed to HideCopied once CopyConfirmDuration elapsed. On
// failure the error surface shows CopyFailedMessage and the displayed result
// is kept. Results carrying an error descriptor cannot be copied, and a copy
// that outlives its result (a new submission started meanwhile) changes
// nothing.
func (c *Controller) Copy(cb Clipboard) (uint64, error) {
	c.mu.Lock()
	if c.result == nil || c.result.Failed() {
		c.mu.Unlock()
		return 0, ErrNothingToCopy
	}
	body := c.result.Body
	submission := c.submission
	c.mu.Unlock()

	err := cb.WriteAll(body)

	c.mu.Lock()
	defer c.mu.Unlock()

	if submission != c.submission || c.result == nil {
		return 0, ErrStaleCopy
	}

	if err != nil {
		c.errMsg = CopyFailedMessage
		return 0, fmt.Errorf("form: copy: %w", err)
	}

	c.copied = true
	c.copyToken++

	return c.copyToken, nil
}

// HideCopied turns the copied indicator off if token is the latest copy.
func (c *Controller) HideCopied(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == c.copyToken {
		c.copied = false
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Busy reports whether a submission is in flight; the submit control is
// disabled while it is.
func (c *Controller) Busy() bool { return c.State() == StateSubmitting }

// Result returns the last successful response, if any.
func (c *Controller) Result() (rewrite.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil {
		return rewrite.Result{}, false
	}

	return *c.result, true
}

// Err returns the text of the error panel, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.errMsg
}

// SetErr shows msg on the error panel without touching the result. Used for
// failures outside the submission itself, such as settings that could not be
// saved.
func (c *Controller) SetErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errMsg = msg
}

// Copied reports whether the copied indicator is visible.
func (c *Controller) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.copied
}

// LastRequest returns the payload of the most recent submission.
func (c *Controller) LastRequest() rewrite.DraftRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastRequest
}
