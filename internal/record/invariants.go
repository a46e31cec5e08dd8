package record

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/richtext"
)

// enforce applies to field f the rules the typed college and essay
// operations maintain, so a raw save cannot store what they would refuse.
func (r *UserRecord) enforce(f Field) error {
	switch f {
	case FieldColleges:
		return enforceColleges(r.Colleges)
	case FieldEssays:
		return enforceEssays(&r.Essays)
	}
	return nil
}

func enforceColleges(list []College) error {
	seen := make(map[string]bool, len(list))
	for i := range list {
		c := &list[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return ErrCollegeNameRequired
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateCollege, c.Name)
		}
		seen[key] = true

		if c.Type == "" {
			c.Type = CollegeTarget
		}
		if c.Status == "" {
			c.Status = StatusNotStarted
		}
		if !c.Type.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCollegeType, c.Type)
		}
		if !c.Status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCollegeStatus, c.Status)
		}
	}
	return nil
}

func enforceEssays(e *Essays) error {
	if ca := e.CommonApp; ca != nil {
		if ca.Prompt < 0 || ca.Prompt > MaxCommonAppPrompt {
			return ErrInvalidPrompt
		}
		ca.Content = richtext.Sanitize(ca.Content)
		ca.WordCount = richtext.WordCount(ca.Content)
		if ca.HealthScore != nil {
			if err := ca.HealthScore.Validate(); err != nil {
				return err
			}
		}
	}
	for i := range e.Supplemental {
		s := &e.Supplemental[i]
		s.CollegeName = strings.TrimSpace(s.CollegeName)
		if s.CollegeName == "" {
			return ErrEssayCollegeRequired
		}
		s.Content = richtext.Sanitize(s.Content)
	}
	return nil
}

// Validate reports whether every sub-score lies in [0,100].
func (h HealthScore) Validate() error {
	for _, v := range []int{h.Overall, h.Content, h.Structure, h.Grammar, h.Voice, h.Plagiarism, h.WordCountScore} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: got %d", ErrScoreOutOfRange, v)
		}
	}
	return nil
}
