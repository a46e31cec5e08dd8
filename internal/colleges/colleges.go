// Package colleges is the read-only reference table of US undergraduate
// institutions and their typical application deadlines.
package colleges

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

//go:embed data/colleges.json
var rawTable []byte

// Institutions that run their own application instead of the Common App.
var ownApplicationSystems = []string{
	"University of California",
	"Georgetown University",
	"University of Texas at Austin",
	"Texas A&M University",
}

// Reference is one row of the table. Deadlines are month-day pairs ("11-01").
type Reference struct {
	Name            string `json:"name"`
	Location        string `json:"location"`
	State           string `json:"state"`
	EarlyDeadline   string `json:"earlyDeadline,omitempty"`
	RegularDeadline string `json:"regularDeadline,omitempty"`
	CommonApp       *bool  `json:"commonApp,omitempty"`
	URL             string `json:"url,omitempty"`
}

// UsesCommonApp reports the explicit flag, or the default for institutions
// without one.
func (r Reference) UsesCommonApp() bool {
	if r.CommonApp != nil {
		return *r.CommonApp
	}
	for _, name := range ownApplicationSystems {
		if strings.Contains(r.Name, name) {
			return false
		}
	}
	return true
}

// Website returns the institution's URL or a search URL when none is known.
func (r Reference) Website() string {
	if r.URL != "" {
		return r.URL
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(r.Name)
}

// Table is an immutable, ordered set of references. Safe for concurrent use.
type Table struct {
	entries []Reference
}

// Default returns the embedded table. It panics if the embedded data is corrupt.
func Default() *Table {
	t, err := Parse(rawTable)
	if err != nil {
		panic(fmt.Sprintf("colleges: embedded table: %v", err))
	}
	return t
}

func Parse(data []byte) (*Table, error) {
	var entries []Reference
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse college table: %w", err)
	}
	return New(entries), nil
}

func New(entries []Reference) *Table {
	cp := make([]Reference, len(entries))
	copy(cp, entries)
	for i := range cp {
		v := cp[i].UsesCommonApp()
		cp[i].CommonApp = &v
	}
	return &Table{entries: cp}
}

func (t *Table) Len() int { return len(t.entries) }

// All returns every entry in source order.
func (t *Table) All() []Reference {
	out := make([]Reference, len(t.entries))
	copy(out, t.entries)
	return out
}

// Search matches query case-insensitively against name, location and state.
// A blank query returns every entry.
func (t *Table) Search(query string) []Reference {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return t.All()
	}

	var out []Reference
	for _, r := range t.entries {
		if strings.Contains(strings.ToLower(r.Name), term) ||
			strings.Contains(strings.ToLower(r.Location), term) ||
			strings.Contains(strings.ToLower(r.State), term) {
			out = append(out, r)
		}
	}
	return out
}

// ByName is an exact, case-insensitive lookup. The first match wins.
func (t *Table) ByName(name string) (Reference, bool) {
	name = strings.TrimSpace(name)
	for _, r := range t.entries {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Reference{}, false
}

func (t *Table) ByState(state string) []Reference {
	state = strings.TrimSpace(state)
	var out []Reference
	for _, r := range t.entries {
		if strings.EqualFold(r.State, state) {
			out = append(out, r)
		}
	}
	return out
}

// MentionedIn returns the entries whose full name appears in text, in table order.
func (t *Table) MentionedIn(text string) []Reference {
	lower := strings.ToLower(text)
	var out []Reference
	for _, r := range t.entries {
		if strings.Contains(lower, strings.ToLower(r.Name)) {
			out = append(out, r)
		}
	}
	return out
}
