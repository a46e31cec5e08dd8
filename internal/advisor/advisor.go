// Package advisor is the counselor chat and the college suggestion
// questionnaire.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/colleges"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
)

const (
	MaxHistory = 20

	activityAIPrompt   = "ai_prompt"
	activityAIResponse = "ai_response"
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrEmptyProfile  = errors.New("add a GPA, test score or interests before asking for suggestions")
	chatOptions      = llm.Options{Temperature: llm.Temp(0.7), MaxTokens: 2000}
	suggestOptions   = llm.Options{Temperature: llm.Temp(0.7), MaxTokens: 3000}
	jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)
)

const counselorInstruction = `You are a helpful AI assistant for Bus2College, a college application management platform.

Your role is to help high school students with:
- Writing and reviewing college application essays (Common App and supplemental essays)
- Providing accurate information about colleges and admissions processes
- Offering guidance on choosing colleges that fit their interests and qualifications
- Answering questions about application timelines, requirements, and strategies
- Reviewing their activities lists and suggesting improvements
- Providing motivation and support during the stressful application process

Be encouraging, specific, and constructive in your feedback. Use publicly available information about colleges and admissions. When reviewing essays, provide detailed feedback on content, structure, grammar, and impact.`

// Records is the part of the record service the advisor reads.
type Records interface {
	Load(ctx context.Context, sess session.Session) (*record.UserRecord, error)
}

type Advisor struct {
	completer llm.Completer
	records   Records
	refs      *colleges.Table
	activity  record.ActivityRecorder
	now       func() time.Time
}

func New(completer llm.Completer, records Records, refs *colleges.Table, activity record.ActivityRecorder) *Advisor {
	if refs == nil {
		refs = colleges.Default()
	}
	return &Advisor{completer: completer, records: records, refs: refs, activity: activity, now: time.Now}
}

func (a *Advisor) track(ctx context.Context, sess session.Session, typ string, details map[string]any) {
	if a.activity != nil {
		a.activity.Track(ctx, sess, typ, details)
	}
}

// ChatRequest carries the whole conversation; the server keeps none.
type ChatRequest struct {
	History     []llm.Message `json:"history"`
	Message     string        `json:"message"`
	PageContext string        `json:"pageContext,omitempty"`
}

type ChatReply struct {
	Reply   string        `json:"reply"`
	History []llm.Message `json:"history"`
}

// Chat answers message in the context of history. Only user and assistant
// turns from history are kept, at most the last MaxHistory of them.
func (a *Advisor) Chat(ctx context.Context, sess session.Session, req ChatRequest) (*ChatReply, error) {
	const op = "advisor.chat"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, apperr.Validation(op, ErrEmptyMessage)
	}

	history := trimHistory(req.History)
	content := msg
	if pc := strings.TrimSpace(req.PageContext); pc != "" {
		content = fmt.Sprintf("[Current Page Context: %s]\n\nUser Question: %s", pc, msg)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: counselorInstruction})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})

	a.track(ctx, sess, activityAIPrompt, map[string]any{"source": "ai_chat", "prompt_length": len(msg)})
	start := a.now()
	reply, err := a.completer.Complete(ctx, messages, chatOptions)
	if err != nil {
		a.track(ctx, sess, activityAIResponse, map[string]any{"source": "ai_chat", "success": false})
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Provider(op, err)
		}
		return nil, err
	}
	a.track(ctx, sess, activityAIResponse, map[string]any{
		"source":           "ai_chat",
		"success":          true,
		"response_length":  len(reply),
		"response_time_ms": a.now().Sub(start).Milliseconds(),
	})

	out := append(history, llm.Message{Role: llm.RoleUser, Content: msg}, llm.Message{Role: llm.RoleAssistant, Content: reply})
	return &ChatReply{Reply: reply, History: trimHistory(out)}, nil
}

func trimHistory(in []llm.Message) []llm.Message {
	kept := make([]llm.Message, 0, len(in))
	for _, m := range in {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) > MaxHistory {
		kept = kept[len(kept)-MaxHistory:]
	}
	return kept
}

// Profile is the questionnaire input. Blank fields are filled from the
// stored studentInfo.
type Profile struct {
	GPA         string   `json:"gpa"`
	TestType    string   `json:"testType"`
	TestScore   string   `json:"testScore"`
	Interests   []string `json:"interests"`
	State       string   `json:"state"`
	InStateOnly bool     `json:"inStateOnly"`
	Preferences string   `json:"preferences"`
}

func (p Profile) empty() bool {
	return p.GPA == "" && p.TestScore == "" && len(p.Interests) == 0
}

type Suggestion struct {
	Name           string              `json:"name"`
	Location       string              `json:"location"`
	Type           record.CollegeType  `json:"type"`
	Fit            string              `json:"fit,omitempty"`
	AcceptanceRate string              `json:"acceptanceRate,omitempty"`
	SATRange       string              `json:"satRange,omitempty"`
	Reference      *colleges.Deadlines `json:"reference,omitempty"`
}

type Suggestions struct {
	Profile  Profile      `json:"profile"`
	Colleges []Suggestion `json:"colleges"`
	Text     string       `json:"text"`
}

// SuggestColleges asks the model for three safety, three target and three
// reach schools and links each to the reference table when it is listed.
func (a *Advisor) SuggestColleges(ctx context.Context, sess session.Session, p Profile) (*Suggestions, error) {
	const op = "advisor.suggest_colleges"
	if err := sess.Require(op); err != nil {
		return nil, err
	}

	if a.records != nil {
		rec, err := a.records.Load(ctx, sess)
		if err != nil {
			return nil, err
		}
		p = fillProfile(p, rec.StudentInfo)
	}
	if p.empty() {
		return nil, apperr.Validation(op, ErrEmptyProfile)
	}

	a.track(ctx, sess, activityAIPrompt, map[string]any{"source": "college_search"})
	reply, err := a.completer.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: suggestionPrompt(p)}}, suggestOptions)
	if err != nil {
		a.track(ctx, sess, activityAIResponse, map[string]any{"source": "college_search", "success": false})
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Provider(op, err)
		}
		return nil, err
	}
	a.track(ctx, sess, activityAIResponse, map[string]any{"source": "college_search", "success": true, "response_length": len(reply)})

	return &Suggestions{Profile: p, Colleges: a.parseSuggestions(reply), Text: reply}, nil
}

func fillProfile(p Profile, info record.StudentInfo) Profile {
	if p.GPA == "" {
		p.GPA = string(info.GPA)
	}
	if p.TestScore == "" {
		switch {
		case info.SAT != "":
			p.TestType, p.TestScore = "SAT", string(info.SAT)
		case info.ACT != "":
			p.TestType, p.TestScore = "ACT", string(info.ACT)
		}
	}
	if p.TestType == "" {
		p.TestType = "SAT"
	}
	if len(p.Interests) == 0 && info.Interests != "" {
		for _, s := range strings.Split(info.Interests, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Interests = append(p.Interests, s)
			}
		}
	}
	if p.State == "" {
		p.State = info.State
	}
	return p
}

func suggestionPrompt(p Profile) string {
	var b strings.Builder
	b.WriteString("You are a college admissions counselor. Based on the following student profile, suggest exactly 9 colleges (3 safety, 3 target, and 3 reach schools):\n\nStudent Profile:\n")
	fmt.Fprintf(&b, "- GPA: %s/4.0\n", orUnknown(p.GPA))
	fmt.Fprintf(&b, "- Test Score: %s %s\n", p.TestType, orUnknown(p.TestScore))
	fmt.Fprintf(&b, "- Fields of Interest: %s\n", orUnknown(strings.Join(p.Interests, ", ")))
	if p.InStateOnly && p.State != "" {
		fmt.Fprintf(&b, "- Location Preference: In-state only (%s)\n", p.State)
	} else {
		b.WriteString("- Location Preference: Any state\n")
	}
	if p.Preferences != "" {
		fmt.Fprintf(&b, "- Additional Preferences: %s\n", p.Preferences)
	}
	if p.InStateOnly && p.State != "" {
		fmt.Fprintf(&b, "\nIMPORTANT: Only suggest colleges located in %s.\n", p.State)
	}
	fmt.Fprintf(&b, `
For each college, provide:
1. College name
2. Location (City, State)
3. Type (Safety/Target/Reach)
4. Why it's a good fit (1 sentence)
5. Acceptance rate (approximate %%)
6. Average %[1]s range

Format your response as a JSON array with this structure:
[
  {
    "name": "College Name",
    "location": "City, State",
    "type": "Safety",
    "fit": "Brief explanation",
    "acceptanceRate": "XX%%",
    "satRange": "XXX-XXX"
  }
]

Provide realistic, well-known colleges that match this profile. Be accurate with acceptance rates and %[1]s ranges.`, p.TestType)
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not provided"
	}
	return s
}

// parseSuggestions reads the JSON array from the reply. When the model
// ignored the format, reference colleges named in the text are returned.
func (a *Advisor) parseSuggestions(reply string) []Suggestion {
	now := a.now()
	var out []Suggestion

	if raw := jsonArrayPattern.FindString(reply); raw != "" {
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			for i := range out {
				if !out[i].Type.Valid() {
					out[i].Type = record.CollegeTarget
				}
				if ref, ok := a.refs.ByName(out[i].Name); ok {
					d := colleges.Resolve(ref, now)
					out[i].Reference = &d
				}
			}
			return out
		}
	}

	out = []Suggestion{}
	for _, ref := range a.refs.MentionedIn(reply) {
		d := colleges.Resolve(ref, now)
		out = append(out, Suggestion{Name: ref.Name, Location: ref.Location, Type: record.CollegeTarget, Reference: &d})
	}
	return out
}
