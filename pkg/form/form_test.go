package form

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/germanamz/rewriter/pkg/rewrite"
	"github.com/germanamz/rewriter/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text    string
	err     error
	onWrite func()
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

type countingRewriter struct {
	calls atomic.Int32
	res   rewrite.Result
	err   error
}

func (r *countingRewriter) Rewrite(context.Context, rewrite.DraftRequest) (rewrite.Result, error) {
	r.calls.Add(1)
	return r.res, r.err
}

func filled() *Controller {
	c := New()
	c.SetField(FieldReason, "meeting")
	c.SetField(FieldEmailText, "can we meet?")
	c.SetField(FieldInstruction, "formal")
	return c
}

func TestController_GuardBlocksRequest(t *testing.T) {
	for _, missing := range []Field{FieldReason, FieldEmailText, FieldInstruction} {
		c := filled()
		c.SetField(missing, "")
		r := &countingRewriter{}

		err := c.Submit(context.Background(), r, settings.Settings{})

		require.ErrorIs(t, err, rewrite.ErrMissingFields)
		assert.Equal(t, int32(0), r.calls.Load())
		assert.Equal(t, StateIdle, c.State())
	}
}

func TestController_SuccessRendersResult(t *testing.T) {
	c := filled()
	r := &countingRewriter{res: rewrite.Result{Subject: "S", Recipient: "R", Sender: "F", Body: "B"}}

	require.NoError(t, c.Submit(context.Background(), r, settings.Settings{}))

	assert.Equal(t, StateSucceeded, c.State())
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "S", res.DisplaySubject())
	assert.Equal(t, "B", res.DisplayBody())
	assert.Empty(t, c.Err())
}

func TestController_InResultErrorIsSuccess(t *testing.T) {
	c := filled()
	r := &countingRewriter{res: rewrite.Result{Error: "Failed to parse response", RawContent: "raw"}}

	require.NoError(t, c.Submit(context.Background(), r, settings.Settings{}))

	assert.Equal(t, StateSucceeded, c.State())
	res, ok := c.Result()
	require.True(t, ok)
	assert.True(t, res.Failed())
	assert.Empty(t, c.Err())
}

func TestController_ServerErrorShowsBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := filled()
	err := c.Submit(context.Background(), rewrite.NewClient(srv.URL, nil), settings.Settings{})

	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
	assert.Equal(t, "boom", c.Err())
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestController_NetworkErrorShowsTransportMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := filled()
	err := c.Submit(context.Background(), rewrite.NewClient(url, nil), settings.Settings{})

	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
	assert.NotEqual(t, rewrite.FallbackMessage, c.Err())
	assert.Contains(t, c.Err(), "connect")
}

func TestController_ResubmitClearsPreviousOutcome(t *testing.T) {
	c := filled()

	require.Error(t, c.Submit(context.Background(), &countingRewriter{err: errors.New("offline")}, settings.Settings{}))
	assert.Equal(t, "offline", c.Err())

	sub, err := c.Begin(settings.Settings{})
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, c.State())
	assert.Empty(t, c.Err())
	_, ok := c.Result()
	assert.False(t, ok)

	assert.True(t, c.Finish(sub.ID, rewrite.Result{Body: "ok"}, nil))
	assert.Equal(t, StateSucceeded, c.State())
}

func TestController_BusyRejectsSecondBegin(t *testing.T) {
	c := filled()
	_, err := c.Begin(settings.Settings{})
	require.NoError(t, err)
	assert.True(t, c.Busy())

	_, err = c.Begin(settings.Settings{})
	assert.ErrorIs(t, err, ErrBusy)
}

func TestController_StaleCompletionIgnored(t *testing.T) {
	c := filled()

	first, err := c.Begin(settings.Settings{})
	require.NoError(t, err)
	c.Abandon()
	assert.Equal(t, StateIdle, c.State())

	second, err := c.Begin(settings.Settings{})
	require.NoError(t, err)

	assert.False(t, c.Finish(first.ID, rewrite.Result{Body: "old"}, nil))
	assert.Equal(t, StateSubmitting, c.State())

	assert.True(t, c.Finish(second.ID, rewrite.Result{Body: "new"}, nil))
	res, _ := c.Result()
	assert.Equal(t, "new", res.Body)

	assert.False(t, c.Finish(second.ID, rewrite.Result{Body: "again"}, nil))
}

func TestController_OverridesForwarded(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		_, _ = w.Write([]byte(`{"body":"ok"}`))
	}))
	defer srv.Close()

	c := filled()
	s := settings.Settings{APIKey: "sk-1", Model: "m", BaseURL: "  "}
	require.NoError(t, c.Submit(context.Background(), rewrite.NewClient(srv.URL, nil), s))

	assert.Equal(t, "sk-1", body["api_key"])
	assert.Equal(t, "m", body["model"])
	assert.NotContains(t, body, "base_url")
	assert.Equal(t, "meeting", body["reason"])
	assert.Equal(t, "can we meet?", body["email_text"])
	assert.Equal(t, "formal", body["instruction"])
}

func TestController_CopyWritesBody(t *testing.T) {
	c := filled()
	require.NoError(t, c.Submit(context.Background(), &countingRewriter{res: rewrite.Result{Subject: "S", Body: "Hello"}}, settings.Settings{}))

	cb := &fakeClipboard{}
	token, err := c.Copy(cb)

	require.NoError(t, err)
	assert.Equal(t, "Hello", cb.text)
	assert.True(t, c.Copied())

	c.HideCopied(token)
	assert.False(t, c.Copied())

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "Hello", res.Body)
	assert.Equal(t, StateSucceeded, c.State())
}

func TestController_HideCopiedIgnoresOldToken(t *testing.T) {
	c := filled()
	require.NoError(t, c.Submit(context.Background(), &countingRewriter{res: rewrite.Result{Body: "x"}}, settings.Settings{}))

	cb := &fakeClipboard{}
	first, err := c.Copy(cb)
	require.NoError(t, err)
	second, err := c.Copy(cb)
	require.NoError(t, err)

	c.HideCopied(first)
	assert.True(t, c.Copied())
	c.HideCopied(second)
	assert.False(t, c.Copied())
}

func TestController_CopyFailureKeepsResult(t *testing.T) {
	c := filled()
	require.NoError(t, c.Submit(context.Background(), &countingRewriter{res: rewrite.Result{Body: "Hello"}}, settings.Settings{}))

	_, err := c.Copy(&fakeClipboard{err: errors.New("no clipboard")})

	require.Error(t, err)
	assert.Equal(t, CopyFailedMessage, c.Err())
	assert.False(t, c.Copied())
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "Hello", res.Body)
}

func TestController_CopyWithoutResult(t *testing.T) {
	_, err := New().Copy(&fakeClipboard{})
	assert.ErrorIs(t, err, ErrNothingToCopy)
}

func TestController_CopyRefusesErrorResult(t *testing.T) {
	c := filled()
	r := &countingRewriter{res: rewrite.Result{Error: "Failed to parse response", RawContent: "raw"}}
	require.NoError(t, c.Submit(context.Background(), r, settings.Settings{}))

	cb := &fakeClipboard{text: "previous clipboard"}
	_, err := c.Copy(cb)

	require.ErrorIs(t, err, ErrNothingToCopy)
	assert.Equal(t, "previous clipboard", cb.text)
	assert.False(t, c.Copied())
	assert.Empty(t, c.Err())
}

func TestController_CopyOutlivedByResubmit(t *testing.T) {
	for _, writeErr := range []error{nil, errors.New("no clipboard")} {
		c := filled()
		require.NoError(t, c.Submit(context.Background(), &countingRewriter{res: rewrite.Result{Body: "Hello"}}, settings.Settings{}))

		var next Submission
		cb := &fakeClipboard{err: writeErr, onWrite: func() {
			var err error
			next, err = c.Begin(settings.Settings{})
			require.NoError(t, err)
		}}

		_, err := c.Copy(cb)
		require.ErrorIs(t, err, ErrStaleCopy)
		assert.False(t, c.Copied())
		assert.Empty(t, c.Err())

		assert.True(t, c.Finish(next.ID, rewrite.Result{Body: "again"}, nil))
		assert.Empty(t, c.Err())
		assert.False(t, c.Copied())
	}
}

func TestCopyConfirmDuration(t *testing.T) {
	assert.Equal(t, 1600*time.Millisecond, CopyConfirmDuration)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
}
