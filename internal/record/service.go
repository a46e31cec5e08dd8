package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/colleges"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/richtext"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
)

const (
	ActivityDataSave = "data_save"
	ActivityDataLoad = "data_load"

	MaxCommonAppPrompt = 7
)

var (
	ErrCollegeNameRequired  = errors.New("college name is required")
	ErrDuplicateCollege     = errors.New("college is already in your list")
	ErrCollegeNotFound      = errors.New("college is not in your list")
	ErrInvalidCollegeType   = errors.New("college type must be Safety, Target or Reach")
	ErrInvalidCollegeStatus = errors.New("college status must be Not Started, In Progress or Submitted")
	ErrInvalidPrompt        = errors.New("essay prompt must be between 1 and 7")
	ErrEssayCollegeRequired = errors.New("supplemental essay needs a college name")
	ErrScoreOutOfRange      = errors.New("health score values must be between 0 and 100")
)

// ActivityRecorder receives audit events. Implementations must not block.
type ActivityRecorder interface {
	Track(ctx context.Context, sess session.Session, activityType string, details map[string]any)
}

type nopRecorder struct{}

func (nopRecorder) Track(context.Context, session.Session, string, map[string]any) {}

type Service struct {
	store    Store
	refs     *colleges.Table
	activity ActivityRecorder
	now      func() time.Time
}

func NewService(store Store, refs *colleges.Table, activity ActivityRecorder) *Service {
	if activity == nil {
		activity = nopRecorder{}
	}
	if refs == nil {
		refs = colleges.Default()
	}
	return &Service{store: store, refs: refs, activity: activity, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) References() *colleges.Table { return s.refs }

// Load returns the signed-in user's record, creating it on first access.
func (s *Service) Load(ctx context.Context, sess session.Session) (*UserRecord, error) {
	const op = "record.load"
	if err := sess.Require(op); err != nil {
		return nil, err
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}
	s.activity.Track(ctx, sess, ActivityDataLoad, map[string]any{"fields": len(Fields)})
	return rec, nil
}

// CommonAppDraft returns the stored Common App draft, or nil when none was
// saved. Unlike Load it records no data_load event.
func (s *Service) CommonAppDraft(ctx context.Context, sess session.Session) (*CommonAppEssay, error) {
	const op = "record.common_app_draft"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}
	return rec.Essays.CommonApp, nil
}

func (s *Service) load(ctx context.Context, sess session.Session, op string) (*UserRecord, error) {
	rec, err := s.store.Load(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return rec, nil
}

// SavePartial validates and persists a single field given as raw JSON.
func (s *Service) SavePartial(ctx context.Context, sess session.Session, field Field, raw json.RawMessage) error {
	const op = "record.save_partial"
	if err := sess.Require(op); err != nil {
		return err
	}

	value, err := Normalize(field, raw)
	if err != nil {
		return apperr.Validation(op, err)
	}
	if field == FieldEssays {
		if value, err = s.dropStaleFeedback(ctx, sess, op, value); err != nil {
			return err
		}
	}
	if err := s.store.SavePartial(ctx, sess.UserID, field, value); err != nil {
		return apperr.Storage(op, err)
	}

	s.activity.Track(ctx, sess, ActivityDataSave, map[string]any{
		"field": string(field),
		"size":  len(value),
	})
	return nil
}

// dropStaleFeedback clears the review carried by an incoming Common App draft
// whose prompt or content differs from the stored draft.
func (s *Service) dropStaleFeedback(ctx context.Context, sess session.Session, op string, value json.RawMessage) (json.RawMessage, error) {
	var next Essays
	if err := json.Unmarshal(value, &next); err != nil {
		return nil, apperr.Validation(op, fmt.Errorf("%w %s: %v", ErrInvalidValue, FieldEssays, err))
	}
	draft := next.CommonApp
	if draft == nil || (draft.AIFeedback == "" && draft.HealthScore == nil) {
		return value, nil
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}
	prev := rec.Essays.CommonApp
	if prev == nil || (prev.Content == draft.Content && prev.Prompt == draft.Prompt) {
		return value, nil
	}

	draft.AIFeedback = ""
	draft.HealthScore = nil
	out, err := json.Marshal(next)
	if err != nil {
		return nil, apperr.Validation(op, fmt.Errorf("%w %s: %v", ErrInvalidValue, FieldEssays, err))
	}
	return out, nil
}

// Save encodes a typed value and persists it as field.
func (s *Service) Save(ctx context.Context, sess session.Session, field Field, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperr.Validation("record.save", fmt.Errorf("%w %s: %v", ErrInvalidValue, field, err))
	}
	return s.SavePartial(ctx, sess, field, raw)
}

func findCollege(list []College, name string) int {
	name = strings.TrimSpace(name)
	for i, c := range list {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return i
		}
	}
	return -1
}

func (s *Service) stamp() *time.Time {
	t := s.now().UTC()
	return &t
}

// AddCollege appends c to the list unless a college with the same name
// (case-insensitive) is already present.
func (s *Service) AddCollege(ctx context.Context, sess session.Session, c College) (*College, error) {
	const op = "record.add_college"
	if err := sess.Require(op); err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, apperr.Validation(op, ErrCollegeNameRequired)
	}
	if c.Type == "" {
		c.Type = CollegeTarget
	}
	if c.Status == "" {
		c.Status = StatusNotStarted
	}
	if !c.Type.Valid() {
		return nil, apperr.Validation(op, ErrInvalidCollegeType)
	}
	if !c.Status.Valid() {
		return nil, apperr.Validation(op, ErrInvalidCollegeStatus)
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}
	if findCollege(rec.Colleges, c.Name) >= 0 {
		return nil, apperr.Validation(op, fmt.Errorf("%w: %s", ErrDuplicateCollege, c.Name))
	}

	if ref, ok := s.refs.ByName(c.Name); ok && c.Location == "" {
		c.Location = ref.Location
	}
	c.AddedDate = s.stamp()

	rec.Colleges = append(rec.Colleges, c)
	if err := s.Save(ctx, sess, FieldColleges, rec.Colleges); err != nil {
		return nil, err
	}
	return &c, nil
}

// Pick selects a reference college for bulk insertion.
type Pick struct {
	Name string      `json:"name"`
	Type CollegeType `json:"type"`
}

// BulkResult reports which picks were added and which were skipped.
type BulkResult struct {
	Added   []College `json:"added"`
	Skipped []string  `json:"skipped"`
}

// AddCollegesFromReference adds picks from the reference table with their
// deadlines resolved. Unknown names and names already listed are skipped.
// deadlineType "early" or "regular" forces the primary deadline; anything else
// uses the regular deadline and labels the entry early when one exists.
func (s *Service) AddCollegesFromReference(ctx context.Context, sess session.Session, picks []Pick, deadlineType string) (*BulkResult, error) {
	const op = "record.add_colleges_from_reference"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	for _, p := range picks {
		if p.Type != "" && !p.Type.Valid() {
			return nil, apperr.Validation(op, ErrInvalidCollegeType)
		}
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &BulkResult{Added: []College{}, Skipped: []string{}}
	for _, p := range picks {
		ref, ok := s.refs.ByName(p.Name)
		if !ok || findCollege(rec.Colleges, ref.Name) >= 0 {
			res.Skipped = append(res.Skipped, p.Name)
			continue
		}

		d := colleges.Resolve(ref, now)
		c := College{
			Name:          ref.Name,
			Location:      ref.Location,
			Type:          p.Type,
			Status:        StatusNotStarted,
			Deadline:      d.RegularDate,
			EarlyDeadline: d.EarlyDate,
			DeadlineType:  colleges.DeadlineTypeRegular,
			AddedDate:     s.stamp(),
		}
		if c.Type == "" {
			c.Type = CollegeTarget
		}
		switch strings.ToLower(deadlineType) {
		case "early":
			if d.EarlyDate != "" {
				c.Deadline = d.EarlyDate
				c.DeadlineType = colleges.DeadlineTypeEarly
			}
		case "regular":
		default:
			if d.EarlyDate != "" {
				c.DeadlineType = colleges.DeadlineTypeEarly
			}
		}

		rec.Colleges = append(rec.Colleges, c)
		res.Added = append(res.Added, c)
	}

	if len(res.Added) == 0 {
		return res, nil
	}
	if err := s.Save(ctx, sess, FieldColleges, rec.Colleges); err != nil {
		return nil, err
	}
	return res, nil
}

// CollegeUpdate holds the mutable parts of a listed college. Nil fields are
// left unchanged.
type CollegeUpdate struct {
	Type         *CollegeType   `json:"type,omitempty"`
	Status       *CollegeStatus `json:"status,omitempty"`
	Deadline     *string        `json:"deadline,omitempty"`
	DeadlineType *string        `json:"deadlineType,omitempty"`
}

func (s *Service) UpdateCollege(ctx context.Context, sess session.Session, name string, u CollegeUpdate) (*College, error) {
	const op = "record.update_college"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	if u.Type != nil && !u.Type.Valid() {
		return nil, apperr.Validation(op, ErrInvalidCollegeType)
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, apperr.Validation(op, ErrInvalidCollegeStatus)
	}
	if u.Deadline != nil && *u.Deadline != "" {
		if _, err := time.Parse("2006-01-02", *u.Deadline); err != nil {
			return nil, apperr.Validation(op, fmt.Errorf("deadline must be YYYY-MM-DD: %w", err))
		}
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}
	i := findCollege(rec.Colleges, name)
	if i < 0 {
		return nil, apperr.NotFound(op, ErrCollegeNotFound)
	}

	c := &rec.Colleges[i]
	if u.Type != nil {
		c.Type = *u.Type
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Deadline != nil {
		c.Deadline = *u.Deadline
	}
	if u.DeadlineType != nil {
		c.DeadlineType = *u.DeadlineType
	}

	if err := s.Save(ctx, sess, FieldColleges, rec.Colleges); err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

func (s *Service) RemoveCollege(ctx context.Context, sess session.Session, name string) error {
	const op = "record.remove_college"
	if err := sess.Require(op); err != nil {
		return err
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return err
	}
	i := findCollege(rec.Colleges, name)
	if i < 0 {
		return apperr.NotFound(op, ErrCollegeNotFound)
	}

	rec.Colleges = append(rec.Colleges[:i], rec.Colleges[i+1:]...)
	return s.Save(ctx, sess, FieldColleges, rec.Colleges)
}

// SaveCommonAppDraft stores a sanitized draft. Feedback and score from an
// earlier review are dropped whenever the content or prompt changes.
func (s *Service) SaveCommonAppDraft(ctx context.Context, sess session.Session, prompt int, content string) (*CommonAppEssay, error) {
	const op = "record.save_common_app_draft"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	if prompt < 0 || prompt > MaxCommonAppPrompt {
		return nil, apperr.Validation(op, ErrInvalidPrompt)
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}

	clean := richtext.Sanitize(content)
	draft := &CommonAppEssay{
		Prompt:       prompt,
		Content:      clean,
		WordCount:    richtext.WordCount(clean),
		LastModified: s.stamp(),
	}
	if prev := rec.Essays.CommonApp; prev != nil && prev.Content == clean && prev.Prompt == prompt {
		draft.AIFeedback = prev.AIFeedback
		draft.HealthScore = prev.HealthScore
	}

	rec.Essays.CommonApp = draft
	if err := s.Save(ctx, sess, FieldEssays, rec.Essays); err != nil {
		return nil, err
	}
	return draft, nil
}

// ApplyFeedback attaches a review to the stored draft if the draft is still
// the one that was reviewed. It reports false when the draft has moved on.
func (s *Service) ApplyFeedback(ctx context.Context, sess session.Session, reviewed CommonAppEssay, feedback string, score HealthScore) (bool, error) {
	const op = "record.apply_feedback"
	if err := sess.Require(op); err != nil {
		return false, err
	}

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return false, err
	}
	cur := rec.Essays.CommonApp
	if cur == nil || cur.Content != reviewed.Content || cur.Prompt != reviewed.Prompt {
		return false, nil
	}

	cur.AIFeedback = feedback
	cur.HealthScore = &score
	if err := s.Save(ctx, sess, FieldEssays, rec.Essays); err != nil {
		return false, err
	}
	return true, nil
}

// SaveSupplementalEssay inserts or replaces the essay for e.CollegeName.
func (s *Service) SaveSupplementalEssay(ctx context.Context, sess session.Session, e SupplementalEssay) (*SupplementalEssay, error) {
	const op = "record.save_supplemental_essay"
	if err := sess.Require(op); err != nil {
		return nil, err
	}
	e.CollegeName = strings.TrimSpace(e.CollegeName)
	if e.CollegeName == "" {
		return nil, apperr.Validation(op, ErrEssayCollegeRequired)
	}
	e.Content = richtext.Sanitize(e.Content)

	rec, err := s.load(ctx, sess, op)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range rec.Essays.Supplemental {
		if strings.EqualFold(rec.Essays.Supplemental[i].CollegeName, e.CollegeName) {
			rec.Essays.Supplemental[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		rec.Essays.Supplemental = append(rec.Essays.Supplemental, e)
	}

	if err := s.Save(ctx, sess, FieldEssays, rec.Essays); err != nil {
		return nil, err
	}
	return &e, nil
}
