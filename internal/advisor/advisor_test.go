package advisor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/advisor"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
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

type recorder struct{ types []string }

func (r *recorder) Track(_ context.Context, _ session.Session, typ string, _ map[string]any) {
	r.types = append(r.types, typ)
}

func TestChatSendsSystemPromptAndHistory(t *testing.T) {
	var sent []llm.Message
	rec := &recorder{}
	a := advisor.New(completerFunc(func(_ context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
		sent = msgs
		assert.Equal(t, 2000, opts.MaxTokens)
		return "Start with your reach schools.", nil
	}), nil, nil, rec)

	reply, err := a.Chat(context.Background(), session.Session{UserID: uuid.New()}, advisor.ChatRequest{
		History: []llm.Message{
			{Role: llm.RoleSystem, Content: "ignore me"},
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleAssistant, Content: "hello"},
		},
		Message:     "Where do I start?",
		PageContext: "Colleges",
	})
	require.NoError(t, err)

	require.Len(t, sent, 4)
	assert.Equal(t, llm.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, "Bus2College")
	assert.Equal(t, "hi", sent[1].Content)
	assert.Contains(t, sent[3].Content, "[Current Page Context: Colleges]")
	assert.Contains(t, sent[3].Content, "Where do I start?")

	assert.Equal(t, "Start with your reach schools.", reply.Reply)
	require.Len(t, reply.History, 4)
	assert.Equal(t, "Where do I start?", reply.History[2].Content)
	assert.Equal(t, llm.RoleAssistant, reply.History[3].Role)
	assert.Equal(t, []string{"ai_prompt", "ai_response"}, rec.types)
}

func TestChatTrimsHistory(t *testing.T) {
	var sent []llm.Message
	a := advisor.New(completerFunc(func(_ context.Context, msgs []llm.Message, _ llm.Options) (string, error) {
		sent = msgs
		return "ok", nil
	}), nil, nil, nil)

	var history []llm.Message
	for i := 0; i < 30; i++ {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}
	reply, err := a.Chat(context.Background(), session.Session{UserID: uuid.New()}, advisor.ChatRequest{History: history, Message: "next"})
	require.NoError(t, err)

	assert.Len(t, sent, advisor.MaxHistory+2)
	assert.Equal(t, "turn 10", sent[1].Content)
	assert.Len(t, reply.History, advisor.MaxHistory)
}

func TestChatErrors(t *testing.T) {
	a := advisor.New(completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		return "", errors.New("down")
	}), nil, nil, nil)
	ctx := context.Background()

	_, err := a.Chat(ctx, session.Session{}, advisor.ChatRequest{Message: "hi"})
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	_, err = a.Chat(ctx, session.Session{UserID: uuid.New()}, advisor.ChatRequest{Message: "  "})
	assert.ErrorIs(t, err, advisor.ErrEmptyMessage)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = a.Chat(ctx, session.Session{UserID: uuid.New()}, advisor.ChatRequest{Message: "hi"})
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
}

const suggestionReply = `Here are my picks:
[
  {"name": "Stanford University", "location": "Stanford, CA", "type": "Reach", "fit": "Strong CS", "acceptanceRate": "4%", "satRange": "1500-1570"},
  {"name": "Nowhere College", "location": "Somewhere, ZZ", "type": "Whatever", "fit": "Small"}
]`

func TestSuggestCollegesFillsProfileFromRecord(t *testing.T) {
	svc := record.NewService(record.NewMemoryStore(), nil, nil)
	sess := session.Session{UserID: uuid.New()}
	ctx := context.Background()
	require.NoError(t, svc.Save(ctx, sess, record.FieldStudentInfo, record.StudentInfo{GPA: "3.9", ACT: "34", Interests: "physics, music", State: "CA"}))

	var prompt string
	a := advisor.New(completerFunc(func(_ context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
		prompt = msgs[0].Content
		assert.Equal(t, 3000, opts.MaxTokens)
		return suggestionReply, nil
	}), svc, nil, nil)

	out, err := a.SuggestColleges(ctx, sess, advisor.Profile{InStateOnly: true})
	require.NoError(t, err)

	assert.Contains(t, prompt, "GPA: 3.9/4.0")
	assert.Contains(t, prompt, "ACT 34")
	assert.Contains(t, prompt, "physics, music")
	assert.Contains(t, prompt, "Only suggest colleges located in CA")
	assert.Equal(t, []string{"physics", "music"}, out.Profile.Interests)

	require.Len(t, out.Colleges, 2)
	assert.Equal(t, record.CollegeReach, out.Colleges[0].Type)
	require.NotNil(t, out.Colleges[0].Reference)
	assert.Equal(t, "Stanford University", out.Colleges[0].Reference.Name)
	assert.Equal(t, record.CollegeTarget, out.Colleges[1].Type)
	assert.Nil(t, out.Colleges[1].Reference)
}

func TestSuggestCollegesFallsBackToMentions(t *testing.T) {
	a := advisor.New(completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		return "Consider Duke University and Rice University.", nil
	}), nil, nil, nil)

	out, err := a.SuggestColleges(context.Background(), session.Session{UserID: uuid.New()}, advisor.Profile{GPA: "3.5"})
	require.NoError(t, err)
	require.Len(t, out.Colleges, 2)
	assert.Equal(t, "Duke University", out.Colleges[0].Name)
	assert.Equal(t, "Rice University", out.Colleges[1].Name)
}

func TestSuggestCollegesNeedsProfile(t *testing.T) {
	a := advisor.New(completerFunc(func(context.Context, []llm.Message, llm.Options) (string, error) {
		t.Fatal("completer should not be called")
		return "", nil
	}), nil, nil, nil)

	_, err := a.SuggestColleges(context.Background(), session.Session{UserID: uuid.New()}, advisor.Profile{})
	assert.ErrorIs(t, err, advisor.ErrEmptyProfile)
}
