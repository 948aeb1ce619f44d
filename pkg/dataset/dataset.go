// Package dataset reads and writes the published progression dataset: one
// flat CSV joining each record with its derived statistics, in a fixed
// column order.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/progression"
	"github.com/swimlytics/recordtrail/pkg/record"
)

// Row is one published record with its progression statistics.
type Row struct {
	record.Record
	progression.Stats
}

// Columns is the published column order.
var Columns = []string{
	"name", "distance", "stroke", "course", "gender", "season",
	"time_seconds", "time_display",
	"record_broken_by", "record_improvement_%",
	"new_record_holder", "new_record_holder_broken_by", "new_record_holder_improvement_%",
	"seasons_between_records", "seasons_between_new_holders",
	"team", "conference", "date", "meet",
	"event_id", "athlete_id", "team_id", "session", "meet_id",
}

// Build zips a table with its stats into dataset rows. The two slices come
// from one progression run and must be the same length.
func Build(t record.Table, stats []progression.Stats) ([]Row, error) {
	if len(t) != len(stats) {
		return nil, fmt.Errorf("table has %d rows but stats has %d", len(t), len(stats))
	}

	rows := make([]Row, len(t))
	for i := range t {
		rows[i] = Row{Record: t[i], Stats: stats[i]}
	}

	return rows, nil
}

// Write emits the dataset as CSV in the published column order.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing dataset header: %w", err)
	}

	for i, r := range rows {
		if err := cw.Write(formatRow(r)); err != nil {
			return fmt.Errorf("writing dataset row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatRow(r Row) []string {
	return []string{
		r.Name,
		strconv.Itoa(r.Distance),
		string(r.Stroke),
		r.Course,
		string(r.Gender),
		strconv.Itoa(r.Season),
		record.FormatSeconds(r.TimeSeconds),
		r.TimeDisplay,
		formatFloat(r.BrokenBy, 2),
		formatFloat(r.ImprovementPct, 4),
		strconv.FormatBool(r.NewHolder),
		formatFloat(r.HolderBrokenBy, 2),
		formatFloat(r.HolderImprovementPct, 4),
		formatInt(r.SeasonsBetweenRecords),
		formatInt(r.SeasonsBetweenHolders),
		r.Team,
		r.Conference,
		formatDate(r.Date),
		r.Meet,
		strconv.Itoa(r.EventID),
		formatInt(r.AthleteID),
		formatInt(r.TeamID),
		r.Session,
		formatInt(r.MeetID),
	}
}

// Read parses a published dataset back into rows.
func Read(src io.Reader) ([]Row, error) {
	cr := csv.NewReader(src)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	for _, name := range Columns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", name)
		}
	}

	var rows []Row

	for line := 2; ; line++ {
		raw, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading dataset line %d: %w", line, err)
		}

		row, err := parseRow(raw, idx)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(raw []string, idx map[string]int) (Row, error) {
	field := func(name string) string { return raw[idx[name]] }

	var (
		row Row
		err error
	)

	row.Name = field("name")
	row.Stroke = event.Stroke(field("stroke"))
	row.Course = field("course")
	row.Gender = event.Gender(field("gender"))
	row.TimeDisplay = field("time_display")
	row.Team = field("team")
	row.Conference = field("conference")
	row.Meet = field("meet")
	row.Session = field("session")

	if row.Distance, err = strconv.Atoi(field("distance")); err != nil {
		return Row{}, fmt.Errorf("invalid distance %q", field("distance"))
	}

	if row.Season, err = strconv.Atoi(field("season")); err != nil {
		return Row{}, fmt.Errorf("invalid season %q", field("season"))
	}

	if row.EventID, err = strconv.Atoi(field("event_id")); err != nil {
		return Row{}, fmt.Errorf("invalid event_id %q", field("event_id"))
	}

	if row.TimeSeconds, err = strconv.ParseFloat(field("time_seconds"), 64); err != nil {
		return Row{}, fmt.Errorf("invalid time_seconds %q", field("time_seconds"))
	}

	if row.NewHolder, err = strconv.ParseBool(field("new_record_holder")); err != nil {
		return Row{}, fmt.Errorf("invalid new_record_holder %q", field("new_record_holder"))
	}

	if row.Date, err = parseDate(field("date")); err != nil {
		return Row{}, err
	}

	if row.BrokenBy, err = parseOptFloat(field("record_broken_by")); err != nil {
		return Row{}, err
	}

	if row.ImprovementPct, err = parseOptFloat(field("record_improvement_%")); err != nil {
		return Row{}, err
	}

	if row.HolderBrokenBy, err = parseOptFloat(field("new_record_holder_broken_by")); err != nil {
		return Row{}, err
	}

	if row.HolderImprovementPct, err = parseOptFloat(field("new_record_holder_improvement_%")); err != nil {
		return Row{}, err
	}

	if row.SeasonsBetweenRecords, err = parseOptInt(field("seasons_between_records")); err != nil {
		return Row{}, err
	}

	if row.SeasonsBetweenHolders, err = parseOptInt(field("seasons_between_new_holders")); err != nil {
		return Row{}, err
	}

	if row.AthleteID, err = parseOptInt(field("athlete_id")); err != nil {
		return Row{}, err
	}

	if row.TeamID, err = parseOptInt(field("team_id")); err != nil {
		return Row{}, err
	}

	if row.MeetID, err = parseOptInt(field("meet_id")); err != nil {
		return Row{}, err
	}

	return row, nil
}

func formatFloat(p *float64, prec int) string {
	if p == nil {
		return ""
	}

	return strconv.FormatFloat(*p, 'f', prec, 64)
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}

	return strconv.Itoa(*p)
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}

	return d.Format(record.DateLayout)
}

func parseOptFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric field %q", s)
	}

	return &v, nil
}

func parseOptInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid integer field %q", s)
	}

	return &v, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	d, err := time.Parse(record.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	return d.UTC(), nil
}
