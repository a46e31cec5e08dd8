package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field names a top-level, independently persisted part of a UserRecord.
type Field string

const (
	FieldStudentInfo     Field = "studentInfo"
	FieldColleges        Field = "colleges"
	FieldEssays          Field = "essays"
	FieldActivities      Field = "activities"
	FieldRecommenders    Field = "recommenders"
	FieldDailyActivities Field = "dailyActivities"
)

// Fields lists every field in canonical order.
var Fields = []Field{
	FieldStudentInfo,
	FieldColleges,
	FieldEssays,
	FieldActivities,
	FieldRecommenders,
	FieldDailyActivities,
}

var (
	ErrUnknownField = errors.New("unknown record field")
	ErrInvalidValue = errors.New("invalid value for record field")
)

var fieldAliases = map[string]Field{
	"student_info":     FieldStudentInfo,
	"dailytracker":     FieldDailyActivities,
	"daily_activities": FieldDailyActivities,
}

// ParseField accepts canonical names, case-insensitively, plus the legacy
// aliases some clients still send.
func ParseField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Fields {
		if strings.ToLower(string(f)) == key {
			return f, nil
		}
	}
	if f, ok := fieldAliases[key]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Column is the snake_case column used by relational backends.
func (f Field) Column() string {
	switch f {
	case FieldStudentInfo:
		return "student_info"
	case FieldDailyActivities:
		return "daily_activities"
	default:
		return string(f)
	}
}

func (f Field) isList() bool {
	switch f {
	case FieldColleges, FieldActivities, FieldRecommenders, FieldDailyActivities:
		return true
	}
	return false
}

// EmptyValue is the JSON a freshly initialized record holds for f.
func (f Field) EmptyValue() json.RawMessage {
	if f.isList() {
		return json.RawMessage("[]")
	}
	return json.RawMessage("{}")
}

func (f Field) target(r *UserRecord) any {
	switch f {
	case FieldStudentInfo:
		return &r.StudentInfo
	case FieldColleges:
		return &r.Colleges
	case FieldEssays:
		return &r.Essays
	case FieldActivities:
		return &r.Activities
	case FieldRecommenders:
		return &r.Recommenders
	case FieldDailyActivities:
		return &r.DailyActivities
	}
	return nil
}

// Value returns the typed value of f inside r.
func (f Field) Value(r *UserRecord) any {
	switch f {
	case FieldStudentInfo:
		return r.StudentInfo
	case FieldColleges:
		return r.Colleges
	case FieldEssays:
		return r.Essays
	case FieldActivities:
		return r.Activities
	case FieldRecommenders:
		return r.Recommenders
	case FieldDailyActivities:
		return r.DailyActivities
	}
	return nil
}

// Normalize checks that raw decodes into f's shape, applies the field's
// invariants and returns the canonical encoding. null becomes the field's
// empty value.
func Normalize(f Field, raw json.RawMessage) (json.RawMessage, error) {
	var scratch UserRecord
	target := f.target(&scratch)
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return f.EmptyValue(), nil
	}
	if (f.isList() && trimmed[0] != '[') || (!f.isList() && trimmed[0] != '{') {
		return nil, fmt.Errorf("%w %s: wrong JSON type", ErrInvalidValue, f)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidValue, f, err)
	}
	scratch.normalize()
	if err := scratch.enforce(f); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidValue, f, err)
	}

	out, err := json.Marshal(f.Value(&scratch))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidValue, f, err)
	}
	return out, nil
}

// Assemble builds a record from per-field JSON. Missing fields stay empty;
// a field that fails to decode is an error.
func Assemble(raw map[Field]json.RawMessage) (*UserRecord, error) {
	rec := Empty()
	for _, f := range Fields {
		v, ok := raw[f]
		if !ok || len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(v, f.target(rec)); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", f, err)
		}
	}
	rec.normalize()
	return rec, nil
}
