package essay_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/essay"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, msgs []llm.Message, opts llm.Options) (string, error)

func (f completerFunc) Complete(ctx context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
	return f(ctx, msgs, opts)
}

func setup(t *testing.T, completer llm.Completer) (*essay.Controller, *record.Service, session.Session) {
	t.Helper()
	svc := record.NewService(record.NewMemoryStore(), nil, nil)
	ctrl := essay.NewController(svc, completer, nil, time.Second)
	return ctrl, svc, session.Session{UserID: uuid.New()}
}

const reviewed = "A compelling story with an authentic voice. Well-organized and polished."

func TestRequestFeedbackHappyPath(t *testing.T) {
	var sent []llm.Message
	ctrl, svc, sess := setup(t, completerFunc(func(_ context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
		sent = msgs
		assert.Equal(t, 1500, opts.MaxTokens)
		return reviewed, nil
	}))
	ctx := context.Background()

	vm, err := ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 5, Content: "<p>The summer I rebuilt a bicycle.</p>"})
	require.NoError(t, err)
	assert.Equal(t, essay.StateIdle, vm.State)
	assert.Equal(t, 6, vm.WordCount)
	assert.NotEmpty(t, vm.PromptText)

	vm, err = ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	require.NoError(t, err)
	assert.Equal(t, essay.StateDone, vm.State)
	assert.False(t, vm.Stale)
	assert.Equal(t, reviewed, vm.Feedback)
	require.NotNil(t, vm.HealthScore)
	assert.Equal(t, essay.Score(reviewed, "", 6), *vm.HealthScore)

	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].Content, "The summer I rebuilt a bicycle.")
	assert.NotContains(t, sent[1].Content, "<p>")

	rec, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, reviewed, rec.Essays.CommonApp.AIFeedback)
	require.NotNil(t, rec.Essays.CommonApp.HealthScore)
}

func TestRequestFeedbackValidation(t *testing.T) {
	calls := 0
	ctrl, _, sess := setup(t, completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		calls++
		return "x", nil
	}))
	ctx := context.Background()

	vm, err := ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	assert.ErrorIs(t, err, essay.ErrNoPromptSelected)
	assert.Equal(t, essay.StateFailed, vm.State)

	_, err = ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 0, Content: "<p>words</p>"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	assert.ErrorIs(t, err, essay.ErrNoPromptSelected)

	_, err = ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 3, Content: "<p> </p>"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	assert.ErrorIs(t, err, essay.ErrEmptyDraft)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Zero(t, calls)
}

func TestRequestFeedbackFailureKeepsStoredFeedback(t *testing.T) {
	fail := false
	ctrl, svc, sess := setup(t, completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		if fail {
			return "", llm.ErrRateLimited
		}
		return reviewed, nil
	}))
	ctx := context.Background()

	_, err := ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 1, Content: "<p>Draft</p>"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	require.NoError(t, err)

	fail = true
	vm, err := ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
	assert.True(t, apperr.Is(err, apperr.KindProvider))
	assert.Equal(t, essay.StateFailed, vm.State)
	assert.Contains(t, vm.Error, "rate limited")

	rec, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, reviewed, rec.Essays.CommonApp.AIFeedback)
}

func TestFeedbackArrivingAfterEditIsStale(t *testing.T) {
	var ctrl *essay.Controller
	var svc *record.Service
	var sess session.Session
	ctrl, svc, sess = setup(t, completerFunc(func(ctx context.Context, _ []llm.Message, _ llm.Options) (string, error) {
		// The student keeps typing while the review is in flight.
		_, err := svc.SaveCommonAppDraft(ctx, sess, 2, "<p>A newer draft</p>")
		return reviewed, err
	}))
	ctx := context.Background()

	_, err := ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 2, Content: "<p>An older draft</p>"})
	require.NoError(t, err)

	vm, err := ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	require.NoError(t, err)
	assert.Equal(t, essay.StateDone, vm.State)
	assert.True(t, vm.Stale)
	assert.Equal(t, reviewed, vm.Feedback)

	rec, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	assert.Contains(t, rec.Essays.CommonApp.Content, "newer")
	assert.Empty(t, rec.Essays.CommonApp.AIFeedback)
	assert.Nil(t, rec.Essays.CommonApp.HealthScore)
}

func TestRequestFeedbackTimesOut(t *testing.T) {
	svc := record.NewService(record.NewMemoryStore(), nil, nil)
	ctrl := essay.NewController(svc, completerFunc(func(ctx context.Context, _ []llm.Message, _ llm.Options) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), nil, 20*time.Millisecond)
	sess := session.Session{UserID: uuid.New()}
	ctx := context.Background()

	_, err := ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 6, Content: "<p>Stars</p>"})
	require.NoError(t, err)

	vm, err := ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, essay.StateFailed, vm.State)
}

func TestViewAnonymous(t *testing.T) {
	ctrl, _, _ := setup(t, completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) { return "", nil }))

	_, err := ctrl.View(context.Background(), session.Session{})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

type typeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *typeCounter) Track(_ context.Context, _ session.Session, typ string, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[typ]++
}

func TestRequestFeedbackRecordsNoDataLoad(t *testing.T) {
	events := &typeCounter{counts: map[string]int{}}
	svc := record.NewService(record.NewMemoryStore(), nil, events)
	ctrl := essay.NewController(svc, completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		return reviewed, nil
	}), nil, time.Second)
	sess := session.Session{UserID: uuid.New()}
	ctx := context.Background()

	_, err := ctrl.Dispatch(ctx, sess, essay.SubmitDraft{Prompt: 2, Content: "<p>Losing the final taught me patience.</p>"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, sess, essay.RequestFeedback{})
	require.NoError(t, err)
	_, err = ctrl.View(ctx, sess)
	require.NoError(t, err)

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Zero(t, events.counts[record.ActivityDataLoad])
	assert.Equal(t, 2, events.counts[record.ActivityDataSave])
}
