package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/swimlytics/recordtrail/pkg/event"
)

// Columns is the fixed column order of a normalized record table.
var Columns = []string{
	"name", "distance", "stroke", "course", "gender", "season",
	"time_seconds", "time_display", "date", "team", "conference", "meet",
	"event_id", "athlete_id", "team_id", "session", "meet_id",
}

// DateLayout is the calendar date format used in flat files.
const DateLayout = "2006-01-02"

// WriteCSV writes the table with the fixed normalized column order.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range t {
		row := []string{
			r.Name,
			strconv.Itoa(r.Distance),
			string(r.Stroke),
			r.Course,
			string(r.Gender),
			strconv.Itoa(r.Season),
			FormatSeconds(r.TimeSeconds),
			r.TimeDisplay,
			formatDate(r.Date),
			r.Team,
			r.Conference,
			r.Meet,
			strconv.Itoa(r.EventID),
			formatID(r.AthleteID),
			formatID(r.TeamID),
			r.Session,
			formatID(r.MeetID),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// ReadCSV reads a table previously written by WriteCSV.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	for _, name := range Columns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var table Table

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		table = append(table, rec)
	}

	return table, nil
}

func parseRow(row []string, idx map[string]int) (Record, error) {
	field := func(name string) string { return row[idx[name]] }

	distance, err := strconv.Atoi(field("distance"))
	if err != nil {
		return Record{}, fmt.Errorf("invalid distance %q", field("distance"))
	}

	season, err := strconv.Atoi(field("season"))
	if err != nil {
		return Record{}, fmt.Errorf("invalid season %q", field("season"))
	}

	seconds, err := strconv.ParseFloat(field("time_seconds"), 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid time_seconds %q", field("time_seconds"))
	}

	eventID, err := strconv.Atoi(field("event_id"))
	if err != nil {
		return Record{}, fmt.Errorf("invalid event_id %q", field("event_id"))
	}

	rec := Record{
		Name:        field("name"),
		Distance:    distance,
		Stroke:      event.Stroke(field("stroke")),
		Course:      field("course"),
		Gender:      event.Gender(field("gender")),
		Season:      season,
		TimeSeconds: seconds,
		TimeDisplay: field("time_display"),
		Team:        field("team"),
		Conference:  field("conference"),
		Meet:        field("meet"),
		Session:     field("session"),
		EventID:     eventID,
	}

	if raw := field("date"); raw != "" {
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid date %q", raw)
		}

		rec.Date = d
	}

	for _, id := range []struct {
		name string
		dst  **int
	}{
		{"athlete_id", &rec.AthleteID},
		{"team_id", &rec.TeamID},
		{"meet_id", &rec.MeetID},
	} {
		raw := field(id.name)
		if raw == "" {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s %q", id.name, raw)
		}

		*id.dst = &v
	}

	return rec, nil
}

// FormatSeconds renders a seconds value for flat files without trailing
// float noise.
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}

	return d.Format(DateLayout)
}

func formatID(p *int) string {
	if p == nil {
		return ""
	}

	return strconv.Itoa(*p)
}
