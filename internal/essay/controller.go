// Package essay reviews Common App drafts with a language model and grades
// the review with a lexical health heuristic.
package essay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/richtext"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
)

var (
	ErrNoPromptSelected = errors.New("select a Common App prompt before requesting feedback")
	ErrEmptyDraft       = errors.New("write your essay before requesting feedback")
)

const (
	ActivityAIPrompt   = "ai_prompt"
	ActivityAIResponse = "ai_response"

	DefaultTimeout = 30 * time.Second
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRequesting State = "requesting"
	StateScoring    State = "scoring"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Command is an input to Controller.Dispatch.
type Command interface {
	command()
}

// SubmitDraft saves the editor contents.
type SubmitDraft struct {
	Prompt  int
	Content string
}

// RequestFeedback reviews the stored draft.
type RequestFeedback struct{}

func (SubmitDraft) command()     {}
func (RequestFeedback) command() {}

// ViewModel is everything a client needs to render the Common App essay pane.
type ViewModel struct {
	Prompt       int                 `json:"prompt"`
	PromptShort  string              `json:"promptShort,omitempty"`
	PromptText   string              `json:"promptText,omitempty"`
	Content      string              `json:"content"`
	WordCount    int                 `json:"wordCount"`
	WordLimit    int                 `json:"wordLimit"`
	Feedback     string              `json:"feedback,omitempty"`
	HealthScore  *record.HealthScore `json:"healthScore,omitempty"`
	LastModified *time.Time          `json:"lastModified,omitempty"`
	State        State               `json:"state"`
	Stale        bool                `json:"stale,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Drafts is the slice of the record service the controller needs.
type Drafts interface {
	CommonAppDraft(ctx context.Context, sess session.Session) (*record.CommonAppEssay, error)
	SaveCommonAppDraft(ctx context.Context, sess session.Session, prompt int, content string) (*record.CommonAppEssay, error)
	ApplyFeedback(ctx context.Context, sess session.Session, reviewed record.CommonAppEssay, feedback string, score record.HealthScore) (bool, error)
}

type Controller struct {
	drafts    Drafts
	completer llm.Completer
	activity  record.ActivityRecorder
	table     PhraseTable
	timeout   time.Duration
}

func NewController(drafts Drafts, completer llm.Completer, activity record.ActivityRecorder, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		drafts:    drafts,
		completer: completer,
		activity:  activity,
		table:     DefaultPhraseTable,
		timeout:   timeout,
	}
}

// View renders the stored draft without changing it.
func (c *Controller) View(ctx context.Context, sess session.Session) (ViewModel, error) {
	draft, err := c.drafts.CommonAppDraft(ctx, sess)
	if err != nil {
		return ViewModel{State: StateIdle, WordLimit: WordLimit}, err
	}
	return viewOf(draft, StateIdle), nil
}

// Dispatch runs cmd to completion. The returned view is meaningful even when
// err is non-nil.
func (c *Controller) Dispatch(ctx context.Context, sess session.Session, cmd Command) (ViewModel, error) {
	switch cmd := cmd.(type) {
	case SubmitDraft:
		draft, err := c.drafts.SaveCommonAppDraft(ctx, sess, cmd.Prompt, cmd.Content)
		if err != nil {
			return failed(ViewModel{Prompt: cmd.Prompt, Content: cmd.Content, WordLimit: WordLimit}, err), err
		}
		return viewOf(draft, StateIdle), nil
	case RequestFeedback:
		return c.requestFeedback(ctx, sess)
	default:
		err := apperr.Validation("essay.dispatch", fmt.Errorf("unsupported command %T", cmd))
		return failed(ViewModel{WordLimit: WordLimit}, err), err
	}
}

func (c *Controller) requestFeedback(ctx context.Context, sess session.Session) (ViewModel, error) {
	const op = "essay.request_feedback"

	draft, err := c.drafts.CommonAppDraft(ctx, sess)
	if err != nil {
		return failed(ViewModel{WordLimit: WordLimit}, err), err
	}
	vm := viewOf(draft, StateValidating)

	prompt, ok := Prompt{}, false
	if draft != nil {
		prompt, ok = PromptByNumber(draft.Prompt)
	}
	if !ok {
		err := apperr.Validation(op, ErrNoPromptSelected)
		return failed(vm, err), err
	}
	plain := richtext.PlainText(draft.Content)
	if plain == "" {
		err := apperr.Validation(op, ErrEmptyDraft)
		return failed(vm, err), err
	}

	vm.State = StateRequesting
	c.track(ctx, sess, ActivityAIPrompt, map[string]any{"feature": "essay_feedback", "prompt": prompt.Number, "words": draft.WordCount})

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	feedback, err := c.completer.Complete(reqCtx, ReviewMessages(prompt, plain, draft.WordCount), ReviewOptions)
	if err != nil {
		c.track(ctx, sess, ActivityAIResponse, map[string]any{"feature": "essay_feedback", "success": false})
		slog.Warn("essay feedback failed", "user_id", sess.UserID.String(), "action", op, "error", err)
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Provider(op, err)
		}
		// Stored feedback is left as it was.
		vm.Error = fmt.Sprintf("Failed to get feedback: %v", err)
		vm.State = StateFailed
		return vm, err
	}
	c.track(ctx, sess, ActivityAIResponse, map[string]any{
		"feature":    "essay_feedback",
		"success":    true,
		"length":     len(feedback),
		"latency_ms": time.Since(start).Milliseconds(),
	})

	vm.State = StateScoring
	score := c.table.Score(feedback, plain, draft.WordCount)

	persisted, err := c.drafts.ApplyFeedback(ctx, sess, *draft, feedback, score)
	vm.Feedback = feedback
	vm.HealthScore = &score
	vm.State = StateDone
	if err != nil {
		vm.Error = fmt.Sprintf("Feedback could not be saved: %v", err)
		return vm, err
	}
	vm.Stale = !persisted
	return vm, nil
}

func (c *Controller) track(ctx context.Context, sess session.Session, typ string, details map[string]any) {
	if c.activity != nil {
		c.activity.Track(ctx, sess, typ, details)
	}
}

func viewOf(draft *record.CommonAppEssay, state State) ViewModel {
	vm := ViewModel{State: state, WordLimit: WordLimit}
	if draft == nil {
		return vm
	}
	vm.Prompt = draft.Prompt
	vm.Content = draft.Content
	vm.WordCount = draft.WordCount
	vm.Feedback = draft.AIFeedback
	vm.HealthScore = draft.HealthScore
	vm.LastModified = draft.LastModified
	if p, ok := PromptByNumber(draft.Prompt); ok {
		vm.PromptShort = p.Short
		vm.PromptText = p.Text
	}
	return vm
}

func failed(vm ViewModel, err error) ViewModel {
	vm.State = StateFailed
	vm.Error = err.Error()
	return vm
}
