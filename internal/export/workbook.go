package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/xuri/excelize/v2"
)

const (
	SheetUserInfo     = "User Info"
	SheetColleges     = "Colleges"
	SheetActivities   = "Activities"
	SheetRecommenders = "Recommenders"
	SheetDailyTracker = "Daily Tracker"
)

// Sheets lists the workbook tabs in the order they are written.
var Sheets = []string{SheetUserInfo, SheetColleges, SheetActivities, SheetRecommenders, SheetDailyTracker}

var ErrUnknownSheet = errors.New("unknown export list")

// SheetFor maps a list name from the API (colleges, activities,
// recommenders, dailyTracker) to its sheet.
func SheetFor(list string) (string, error) {
	f, err := record.ParseField(list)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownSheet, list)
	}
	switch f {
	case record.FieldColleges:
		return SheetColleges, nil
	case record.FieldActivities:
		return SheetActivities, nil
	case record.FieldRecommenders:
		return SheetRecommenders, nil
	case record.FieldDailyActivities:
		return SheetDailyTracker, nil
	case record.FieldStudentInfo:
		return SheetUserInfo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSheet, list)
}

func rows(sheet string, owner Owner, rec *record.UserRecord) [][]any {
	switch sheet {
	case SheetUserInfo:
		s := rec.StudentInfo
		return [][]any{
			{"Name", "Email", "Grade", "GPA", "SAT", "ACT", "State", "Interests"},
			{firstNonEmpty(s.Name, owner.DisplayName), owner.Email, string(s.Grade), string(s.GPA), string(s.SAT), string(s.ACT), s.State, s.Interests},
		}
	case SheetColleges:
		out := [][]any{{"Name", "Location", "Type", "Deadline", "Early Deadline", "Deadline Type", "Status"}}
		for _, c := range rec.Colleges {
			out = append(out, []any{c.Name, c.Location, string(c.Type), c.Deadline, c.EarlyDeadline, c.DeadlineType, string(c.Status)})
		}
		return out
	case SheetActivities:
		out := [][]any{{"Name", "Type", "Role", "Description", "Years Involved", "Hours Per Week"}}
		for _, a := range rec.Activities {
			out = append(out, []any{a.Name, a.Type, a.Role, a.Description, string(a.YearsInvolved), string(a.HoursPerWeek)})
		}
		return out
	case SheetRecommenders:
		out := [][]any{{"Name", "Title", "Email", "Subject", "Status"}}
		for _, r := range rec.Recommenders {
			out = append(out, []any{r.Name, r.Title, r.Email, r.Subject, r.Status})
		}
		return out
	case SheetDailyTracker:
		out := [][]any{{"Date", "Activity", "Notes"}}
		for _, d := range rec.DailyActivities {
			out = append(out, []any{d.Date, d.Activity, d.Notes})
		}
		return out
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Workbook writes an .xlsx file. With no sheets named it writes all of them.
func Workbook(w io.Writer, owner Owner, rec *record.UserRecord, sheets ...string) error {
	if len(sheets) == 0 {
		sheets = Sheets
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}

		for r, row := range rows(name, owner, rec) {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", name, r+1, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
