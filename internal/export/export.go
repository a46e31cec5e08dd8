// Package export renders a user record as JSON, CSV or a spreadsheet and
// restores a record from a JSON export.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	ActivityExport = "export"
	ActivityImport = "import"
)

var (
	ErrMissingData = errors.New("import file has no data section")
	ErrMalformed   = errors.New("import file is not valid JSON")
)

// Owner identifies whose record an export holds.
type Owner struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
}

type Document struct {
	ExportDate time.Time          `json:"exportDate"`
	User       Owner              `json:"user"`
	Data       *record.UserRecord `json:"data"`
}

// JSON writes the record as an indented export document.
func JSON(w io.Writer, owner Owner, rec *record.UserRecord, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{ExportDate: now.UTC(), User: owner, Data: rec})
}

var collegeHeader = []string{"Name", "Location", "Type", "Deadline", "Status"}

// CollegesCSV writes the college list, one row per college.
func CollegesCSV(w io.Writer, list []record.College) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(collegeHeader); err != nil {
		return err
	}
	for _, c := range list {
		if err := cw.Write([]string{c.Name, c.Location, string(c.Type), c.Deadline, string(c.Status)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Saver persists one top-level field.
type Saver interface {
	SavePartial(ctx context.Context, sess session.Session, field record.Field, raw json.RawMessage) error
}

type Importer struct {
	saver    Saver
	activity record.ActivityRecorder
}

func NewImporter(saver Saver, activity record.ActivityRecorder) *Importer {
	return &Importer{saver: saver, activity: activity}
}

// Import restores every field present in the document's data section.
// All fields are validated before the first write; the writes then run
// concurrently and each one stands on its own.
func (im *Importer) Import(ctx context.Context, sess session.Session, r io.Reader) ([]record.Field, error) {
	const op = "export.import"
	if err := sess.Require(op); err != nil {
		return nil, err
	}

	var doc struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperr.Validation(op, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if len(doc.Data) == 0 {
		return nil, apperr.Validation(op, ErrMissingData)
	}

	values := make(map[record.Field]json.RawMessage, len(doc.Data))
	for name, raw := range doc.Data {
		f, err := record.ParseField(name)
		if err != nil {
			return nil, apperr.Validation(op, err)
		}
		if _, err := record.Normalize(f, raw); err != nil {
			return nil, apperr.Validation(op, err)
		}
		values[f] = raw
	}

	g, gctx := errgroup.WithContext(ctx)
	for f, raw := range values {
		g.Go(func() error {
			return im.saver.SavePartial(gctx, sess, f, raw)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := make([]record.Field, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	if im.activity != nil {
		im.activity.Track(ctx, sess, ActivityImport, map[string]any{"format": "json", "fields": len(fields)})
	}
	return fields, nil
}
