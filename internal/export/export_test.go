package export_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() *record.UserRecord {
	rec := record.Empty()
	rec.StudentInfo = record.StudentInfo{Name: "Sam Lee", GPA: "3.8", State: "CA"}
	rec.Colleges = []record.College{
		{Name: "Stanford University", Location: "Stanford, CA", Type: record.CollegeReach, Status: record.StatusNotStarted, Deadline: "2026-01-05"},
		{Name: "University of Washington", Location: "Seattle, WA", Type: record.CollegeTarget, Status: record.StatusInProgress},
	}
	rec.Activities = []record.Activity{{Name: "Robotics", Role: "Captain", HoursPerWeek: "6"}}
	rec.DailyActivities = []record.DailyActivity{{Date: "2025-09-01", Activity: "Drafted essay"}}
	return rec
}

func TestCollegesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.CollegesCSV(&buf, sample().Colleges))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Location,Type,Deadline,Status", lines[0])
	assert.Equal(t, `Stanford University,"Stanford, CA",Reach,2026-01-05,Not Started`, lines[1])
	assert.Equal(t, `University of Washington,"Seattle, WA",Target,,In Progress`, lines[2])
}

func TestJSONDocument(t *testing.T) {
	owner := export.Owner{ID: uuid.New(), Email: "sam@example.com"}
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, export.JSON(&buf, owner, sample(), now))

	var doc export.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.True(t, now.Equal(doc.ExportDate))
	assert.Equal(t, owner, doc.User)
	require.NotNil(t, doc.Data)
	assert.Len(t, doc.Data.Colleges, 2)
	assert.Empty(t, doc.Data.Recommenders)
}

func TestWorkbookAllSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Workbook(&buf, export.Owner{Email: "sam@example.com"}, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, export.Sheets, f.GetSheetList())

	rows, err := f.GetRows(export.SheetColleges)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Stanford University", rows[1][0])

	info, err := f.GetRows(export.SheetUserInfo)
	require.NoError(t, err)
	require.Len(t, info, 2)
	assert.Equal(t, "Sam Lee", info[1][0])
	assert.Equal(t, "sam@example.com", info[1][1])

	recs, err := f.GetRows(export.SheetRecommenders)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestWorkbookSingleSheet(t *testing.T) {
	sheet, err := export.SheetFor("dailyTracker")
	require.NoError(t, err)
	assert.Equal(t, export.SheetDailyTracker, sheet)

	_, err = export.SheetFor("essays")
	assert.ErrorIs(t, err, export.ErrUnknownSheet)

	var buf bytes.Buffer
	require.NoError(t, export.Workbook(&buf, export.Owner{}, sample(), sheet))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.SheetDailyTracker}, f.GetSheetList())
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := sample()
	var buf bytes.Buffer
	require.NoError(t, export.JSON(&buf, export.Owner{}, src, time.Now()))

	svc := record.NewService(record.NewMemoryStore(), nil, nil)
	sess := session.Session{UserID: uuid.New()}
	fields, err := export.NewImporter(svc, nil).Import(ctx, sess, &buf)
	require.NoError(t, err)
	assert.Len(t, fields, len(record.Fields))

	got, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, src.Colleges, got.Colleges)
	assert.Equal(t, src.StudentInfo.Name, got.StudentInfo.Name)
	assert.Equal(t, src.DailyActivities, got.DailyActivities)
}

func TestImportPartialData(t *testing.T) {
	ctx := context.Background()
	svc := record.NewService(record.NewMemoryStore(), nil, nil)
	sess := session.Session{UserID: uuid.New()}

	fields, err := export.NewImporter(svc, nil).Import(ctx, sess, strings.NewReader(`{"data":{"activities":[{"name":"Chess"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []record.Field{record.FieldActivities}, fields)

	got, err := svc.Load(ctx, sess)
	require.NoError(t, err)
	require.Len(t, got.Activities, 1)
	assert.Empty(t, got.Colleges)
}

type countingSaver struct{ calls int }

func (c *countingSaver) SavePartial(context.Context, session.Session, record.Field, json.RawMessage) error {
	c.calls++
	return nil
}

func TestImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	sess := session.Session{UserID: uuid.New()}
	saver := &countingSaver{}
	im := export.NewImporter(saver, nil)

	cases := map[string]string{
		"not json":      `{`,
		"no data":       `{"exportDate":"2025-09-01T00:00:00Z"}`,
		"unknown field": `{"data":{"colleges":[],"grades":[]}}`,
		"wrong type":    `{"data":{"colleges":{"name":"x"},"activities":[]}}`,
		"duplicate":     `{"data":{"activities":[],"colleges":[{"name":"Duke"},{"name":"duke"}]}}`,
		"bad score":     `{"data":{"essays":{"commonApp":{"prompt":1,"healthScore":{"overall":101}}}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := im.Import(ctx, sess, strings.NewReader(body))
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	assert.Zero(t, saver.calls)

	_, err := im.Import(ctx, session.Session{}, strings.NewReader(`{"data":{}}`))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}
