package activity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActivity struct {
	Base[stubActivity, string, error]
}

func (a *stubActivity) Run() {}

func newAttached[Self attachable[S, F], S, F any](self Self) (*Collector, Self) {
	c := NewCollector(nil, WithReactor(syncReactor{}))
	self.attach(c)
	return c, self
}

func TestActivity_PlainSuccessProceeds(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))
	require.NoError(t, a.Success("ok"))
	assert.Equal(t, 1, fired)
	assert.True(t, a.Okay())
}

func TestActivity_SecondWriteIsCheckedNoop(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	require.NoError(t, a.Success("first"))
	assert.ErrorIs(t, a.Success("second"), ErrAlreadyCompleted)
	assert.ErrorIs(t, a.Failure(errors.New("boom")), ErrAlreadyCompleted)
	assert.Equal(t, "first", a.SuccessData())
}

func TestActivity_RequiredFailureAborts(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setRequired(true)

	var completed, canceled int
	child := recordingChild{
		run:    func() { completed++ },
		cancel: func() { canceled++ },
	}
	a.Done(newCombinator(a.Collector(), child, 1))

	require.NoError(t, a.Failure(errors.New("boom")))
	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, canceled)
	assert.True(t, a.Failed())
}

func TestActivity_OptionalFailureProceeds(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setRequired(false)

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))

	require.NoError(t, a.Failure(errors.New("boom")))
	assert.Equal(t, 1, fired)
	assert.True(t, a.Failed())
}

func TestActivity_IfFailedOverridesRequired(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setRequired(true)
	a.setIfFailed(func(error) bool { return false })

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))

	require.NoError(t, a.Failure(errors.New("boom")))
	assert.Equal(t, 1, fired, "if_failed returning false downgrades required failure to proceed")
}

func TestActivity_CancelIfConvertsSuccessToError(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setCancelIf(func(s string) bool { return s == "bad" })

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))

	require.NoError(t, a.Success("bad"))
	assert.True(t, a.Error())
	assert.Equal(t, 0, fired, "cancel_if with no if_errored override aborts")
}

func TestActivity_IfErroredFalseKeepsProceeding(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setCancelIf(func(s string) bool { return s == "bad" })
	a.setIfErrored(func(string) bool { return false })

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))

	require.NoError(t, a.Success("bad"))
	assert.True(t, a.Error())
	assert.Equal(t, 1, fired, "if_errored returning false proceeds despite the conversion")
}

func TestActivity_ExternalCancelIsIdempotentAndFirstWins(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})

	require.NoError(t, a.Success("ok"))
	assert.ErrorIs(t, a.Cancel(), ErrAlreadyCompleted)
	assert.ErrorIs(t, a.Cancel(), ErrAlreadyCompleted)
	assert.True(t, a.Okay())
	assert.False(t, a.Canceled())
}

func TestActivity_HookPanicTreatedAsTrue(t *testing.T) {
	_, a := newAttached[*stubActivity, string, error](&stubActivity{})
	a.setCancelIf(func(string) bool { panic("boom") })

	var fired int
	a.Done(newCombinator(a.Collector(), newRecordingChild(func() { fired++ }), 1))

	require.NoError(t, a.Success("x"))
	assert.True(t, a.Error(), "a panicking cancel_if is treated as returning true")
	assert.Equal(t, 0, fired)
}

// recordingChild adapts plain funcs to activityRunner for tests that care
// whether Run or Cancel fired.
type recordingChild struct {
	run    func()
	cancel func()
}

func newRecordingChild(run func()) recordingChild { return recordingChild{run: run} }

func (r recordingChild) Run() {
	if r.run != nil {
		r.run()
	}
}

func (r recordingChild) Cancel() error {
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}
