package colleges

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
)

const (
	DeadlineTypeEarly   = "Early Decision/Action"
	DeadlineTypeRegular = "Regular Decision"

	dateLayout = "2006-01-02"

	// Deadlines in or after this month belong to the calendar year the cycle
	// opens in; earlier months fall in the following year.
	cycleRolloverMonth = time.August
)

var ErrInvalidMonthDay = errors.New("deadline must be formatted MM-DD")

// ResolveDeadline anchors a MM-DD deadline to the current application cycle.
// An empty input returns nil.
func ResolveDeadline(monthDay string, now time.Time) (*time.Time, error) {
	monthDay = strings.TrimSpace(monthDay)
	if monthDay == "" {
		return nil, nil
	}

	month, day, err := parseMonthDay(monthDay)
	if err != nil {
		return nil, apperr.Validation("colleges.resolve_deadline", err)
	}

	year := now.Year()
	if month < cycleRolloverMonth {
		year++
	}
	// 02-29 falls back to 02-28 outside leap years.
	if last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d, nil
}

// FormatDeadline is ResolveDeadline rendered as YYYY-MM-DD ("" for no deadline).
func FormatDeadline(monthDay string, now time.Time) (string, error) {
	d, err := ResolveDeadline(monthDay, now)
	if err != nil || d == nil {
		return "", err
	}
	return d.Format(dateLayout), nil
}

func parseMonthDay(s string) (time.Month, int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > daysIn(time.Month(m)) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthDay, s)
	}
	return time.Month(m), d, nil
}

func daysIn(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// Deadlines is a reference with both deadlines anchored to a cycle.
type Deadlines struct {
	Reference
	EarlyDate   string `json:"earlyDate,omitempty"`
	RegularDate string `json:"regularDate,omitempty"`
	Website     string `json:"website"`
}

// Resolve anchors both deadlines of r. Malformed table data is treated as
// "no deadline".
func Resolve(r Reference, now time.Time) Deadlines {
	early, _ := FormatDeadline(r.EarlyDeadline, now)
	regular, _ := FormatDeadline(r.RegularDeadline, now)
	return Deadlines{Reference: r, EarlyDate: early, RegularDate: regular, Website: r.Website()}
}

func ResolveAll(refs []Reference, now time.Time) []Deadlines {
	out := make([]Deadlines, len(refs))
	for i, r := range refs {
		out[i] = Resolve(r, now)
	}
	return out
}
