// Package export reads the governing-body record export: a CSV download
// whose column names are a fixed contract and whose cells carry the
// spreadsheet quoting artifact (`="value"`). Rows are normalized into
// records and deduplicated on their provenance key.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
	"github.com/swimlytics/recordtrail/pkg/swimtime"
)

// Contract column names of the export. Anything else in the file is
// passthrough metadata and ignored.
const (
	colTime       = "swim_time"
	colStroke     = "stroke_code"
	colCourse     = "course_code"
	colDate       = "swim_date"
	colTeam       = "club_code"
	colName       = "full_name_computed"
	colMeet       = "meet_name"
	colConference = "lsc_id"
	colDistance   = "distance"
	colGender     = "gender"
	colEventID    = "event_id"
	colTeamID     = "AthleteOrgUnitId"
	colMeetID     = "MeetId"
	colAthleteID  = "PersonId"
	colSession    = "session_desc"
)

var contractColumns = []string{
	colTime, colStroke, colCourse, colDate, colTeam, colName,
	colMeet, colConference, colDistance, colGender, colEventID,
	colTeamID, colMeetID, colAthleteID, colSession,
}

// strokeCodes are the stroke values the export is allowed to carry.
var strokeCodes = map[string]event.Stroke{
	"FR":              event.Freestyle,
	"BK":              event.Backstroke,
	"BR":              event.Breaststroke,
	"FL":              event.Butterfly,
	"IM":              event.IM,
	"Freestyle Relay": event.FreestyleRelay,
	"Medley Relay":    event.MedleyRelay,
}

// SkippedRow is an export row that failed to normalize, kept for review.
type SkippedRow struct {
	Line int
	Raw  []string
	Err  error
}

// Result is the outcome of reading one export file.
type Result struct {
	Records record.Table
	Skipped []SkippedRow
}

// Reader normalizes governing-body export files.
type Reader struct {
	log logrus.FieldLogger
}

// New creates an export reader.
func New(log logrus.FieldLogger) *Reader {
	return &Reader{log: log.WithField("component", "export")}
}

// Read parses one export file. A missing contract column fails the whole
// file; a malformed row is skipped, logged and surfaced in the result.
func (r *Reader) Read(src io.Reader) (Result, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	// Cells carry the ="value" wrapper inside the CSV quoting. LazyQuotes
	// also tolerates files that leave the wrapper unquoted.
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("reading export header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[stripQuoting(name)] = i
	}

	for _, name := range contractColumns {
		if _, ok := idx[name]; !ok {
			return Result{}, fmt.Errorf("export is missing contract column %q", name)
		}
	}

	var (
		res  Result
		seen = make(map[record.ProvenanceKey]struct{})
	)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return Result{}, fmt.Errorf("reading export line %d: %w", line, err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			r.log.WithError(err).WithField("line", line).
				Warn("Skipping malformed export row")

			res.Skipped = append(res.Skipped, SkippedRow{Line: line, Raw: row, Err: err})

			continue
		}

		// Keep-first on the provenance key: the export repeats a swim once
		// per record list it appears on.
		if rec.HasProvenance() {
			key := rec.Provenance()
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		res.Records = append(res.Records, rec)
	}

	r.log.WithFields(logrus.Fields{
		"records": len(res.Records),
		"skipped": len(res.Skipped),
	}).Info("Export file read")

	return res, nil
}

func parseRow(row []string, idx map[string]int) (record.Record, error) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}

		return stripQuoting(row[i])
	}

	stroke, ok := strokeCodes[field(colStroke)]
	if !ok {
		return record.Record{}, &event.UnknownStrokeError{Name: field(colStroke)}
	}

	distance, err := strconv.Atoi(field(colDistance))
	if err != nil {
		return record.Record{}, fmt.Errorf("invalid distance %q", field(colDistance))
	}

	eventID, err := strconv.Atoi(field(colEventID))
	if err != nil {
		return record.Record{}, fmt.Errorf("invalid event_id %q", field(colEventID))
	}

	date, err := parseDate(field(colDate))
	if err != nil {
		return record.Record{}, err
	}

	display := swimtime.StripLeadingColon(field(colTime))

	seconds, err := swimtime.Parse(display)
	if err != nil {
		return record.Record{}, err
	}

	rec := record.Record{
		Name:        reorderName(field(colName)),
		Distance:    distance,
		Stroke:      stroke,
		Course:      field(colCourse),
		Gender:      event.Gender(field(colGender)),
		Season:      event.SeasonOf(date),
		Date:        date,
		TimeSeconds: seconds,
		TimeDisplay: display,
		Team:        field(colTeam),
		Conference:  trimConference(field(colConference)),
		Meet:        field(colMeet),
		Session:     field(colSession),
		EventID:     eventID,
	}

	for _, id := range []struct {
		col string
		dst **int
	}{
		{colAthleteID, &rec.AthleteID},
		{colTeamID, &rec.TeamID},
		{colMeetID, &rec.MeetID},
	} {
		raw := field(id.col)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			return record.Record{}, fmt.Errorf("invalid %s %q", id.col, raw)
		}

		*id.dst = &v
	}

	return rec, nil
}

// stripQuoting removes the `="value"` spreadsheet-formula artifact the
// export wraps cells and column names in.
func stripQuoting(s string) string {
	s = strings.Trim(s, "=")

	return strings.Trim(s, "\"")
}

// reorderName flips "Last, First" into display order.
func reorderName(name string) string {
	parts := strings.SplitN(name, ", ", 2)
	if len(parts) != 2 {
		return name
	}

	return parts[1] + " " + parts[0]
}

// trimConference drops the club suffix the export appends to the
// conference id ("PC-STA" carries conference "PC" and club "STA").
func trimConference(s string) string {
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[:i]
	}

	return s
}

// dateLayouts accepted for swim_date.
var dateLayouts = []string{"1/2/2006", "2006-01-02", "1/2/06"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized swim_date %q", s)
}
