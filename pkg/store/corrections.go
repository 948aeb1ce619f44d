package store

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
	"github.com/swimlytics/recordtrail/pkg/swimtime"
)

// Correction ops.
const (
	OpInsert = "insert"
	OpAmend  = "amend"
	OpDelete = "delete"
)

// ConflictError reports an inserted record whose merge key collides with a
// row already in the table.
type ConflictError struct {
	Key record.MergeKey
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("insert conflicts with existing record %q / %.2f / %d",
		e.Key.Name, e.Key.TimeSeconds, e.Key.Season)
}

// Correction is one entry of a correction-patch file. Fact-checked fixes to
// the historical data live in these files, not in code.
type Correction struct {
	Op   string `yaml:"op"`
	Note string `yaml:"note,omitempty"`

	// Record describes the row an insert adds.
	Record *NewRecord `yaml:"record,omitempty"`

	// Match selects the rows an amend or delete applies to. Set fields
	// combine as AND.
	Match *Match `yaml:"match,omitempty"`

	// Set holds the field changes an amend applies.
	Set *Changes `yaml:"set,omitempty"`
}

// NewRecord is the payload of an insert correction. Time is the display
// string; seconds are derived. Course defaults to SCY and the athlete id
// may be left unset for the canonicalizer to resolve.
type NewRecord struct {
	Name       string `yaml:"name"`
	Distance   int    `yaml:"distance"`
	Stroke     string `yaml:"stroke"`
	Course     string `yaml:"course,omitempty"`
	Gender     string `yaml:"gender"`
	Season     int    `yaml:"season"`
	Date       string `yaml:"date,omitempty"`
	Time       string `yaml:"time"`
	Team       string `yaml:"team,omitempty"`
	Conference string `yaml:"conference,omitempty"`
	Meet       string `yaml:"meet,omitempty"`
	Session    string `yaml:"session,omitempty"`
	AthleteID  *int   `yaml:"athlete_id,omitempty"`
}

// Match selects rows by exact field values.
type Match struct {
	Name        *string  `yaml:"name,omitempty"`
	Season      *int     `yaml:"season,omitempty"`
	TimeSeconds *float64 `yaml:"time_seconds,omitempty"`
	EventID     *int     `yaml:"event_id,omitempty"`
	Gender      *string  `yaml:"gender,omitempty"`
}

// Changes are the fields an amend may rewrite. Setting the time display
// recomputes seconds; setting only seconds reformats the display.
type Changes struct {
	Name        *string  `yaml:"name,omitempty"`
	Season      *int     `yaml:"season,omitempty"`
	Date        *string  `yaml:"date,omitempty"`
	Team        *string  `yaml:"team,omitempty"`
	Time        *string  `yaml:"time,omitempty"`
	TimeSeconds *float64 `yaml:"time_seconds,omitempty"`
}

// LoadCorrections reads a correction-patch file.
func LoadCorrections(path string) ([]Correction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corrections: %w", err)
	}

	var corrections []Correction
	if err := yaml.Unmarshal(data, &corrections); err != nil {
		return nil, fmt.Errorf("parsing corrections: %w", err)
	}

	for i, c := range corrections {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("correction %d: %w", i, err)
		}
	}

	return corrections, nil
}

func (c Correction) validate() error {
	switch c.Op {
	case OpInsert:
		if c.Record == nil {
			return fmt.Errorf("insert needs a record")
		}
	case OpAmend:
		if c.Match == nil || c.Set == nil {
			return fmt.Errorf("amend needs match and set")
		}
	case OpDelete:
		if c.Match == nil {
			return fmt.Errorf("delete needs match")
		}
	default:
		return fmt.Errorf("unknown op %q", c.Op)
	}

	return nil
}

// Correct applies a correction patch in order and returns the corrected
// table. The input table is left untouched. An insert whose merge key
// collides with an existing row fails with ConflictError; an amend or
// delete that matches nothing is logged and skipped.
func (s *Store) Correct(t record.Table, corrections []Correction) (record.Table, error) {
	out := t.Clone()

	for i, c := range corrections {
		var err error

		switch c.Op {
		case OpInsert:
			out, err = s.applyInsert(out, c)
		case OpAmend:
			out, err = s.applyAmend(out, c)
		case OpDelete:
			out, err = s.applyDelete(out, c)
		default:
			err = fmt.Errorf("unknown op %q", c.Op)
		}

		if err != nil {
			return nil, fmt.Errorf("correction %d: %w", i, err)
		}
	}

	return out, nil
}

func (s *Store) applyInsert(t record.Table, c Correction) (record.Table, error) {
	rec, err := c.Record.toRecord()
	if err != nil {
		return nil, err
	}

	key := rec.Key()
	for _, existing := range t {
		if existing.Key() == key {
			return nil, &ConflictError{Key: key}
		}
	}

	s.log.WithFields(logrus.Fields{
		"name":   rec.Name,
		"season": rec.Season,
	}).Debug("Inserted record")

	return append(t, rec), nil
}

func (s *Store) applyAmend(t record.Table, c Correction) (record.Table, error) {
	matched := 0

	for i := range t {
		if !c.Match.matches(t[i]) {
			continue
		}

		if err := c.Set.apply(&t[i]); err != nil {
			return nil, err
		}

		matched++
	}

	if matched == 0 {
		s.log.WithField("note", c.Note).Warn("Amend matched no rows")
	}

	return t, nil
}

func (s *Store) applyDelete(t record.Table, c Correction) (record.Table, error) {
	out := t.Filter(func(r record.Record) bool { return !c.Match.matches(r) })

	if len(out) == len(t) {
		s.log.WithField("note", c.Note).Warn("Delete matched no rows")
	}

	return out, nil
}

func (n *NewRecord) toRecord() (record.Record, error) {
	stroke := event.Stroke(n.Stroke)

	eventID, err := event.ID(n.Distance, stroke)
	if err != nil {
		return record.Record{}, err
	}

	seconds, err := swimtime.Parse(n.Time)
	if err != nil {
		return record.Record{}, err
	}

	course := n.Course
	if course == "" {
		course = event.CourseSCY
	}

	rec := record.Record{
		Name:        n.Name,
		Distance:    n.Distance,
		Stroke:      stroke,
		Course:      course,
		Gender:      event.Gender(n.Gender),
		Season:      n.Season,
		TimeSeconds: seconds,
		TimeDisplay: n.Time,
		Team:        n.Team,
		Conference:  n.Conference,
		Meet:        n.Meet,
		Session:     n.Session,
		EventID:     eventID,
	}

	if n.Date != "" {
		date, err := time.Parse(record.DateLayout, n.Date)
		if err != nil {
			return record.Record{}, fmt.Errorf("invalid date %q", n.Date)
		}

		rec.Date = date.UTC()
	} else {
		rec.Date = time.Date(n.Season, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	if n.AthleteID != nil {
		rec.AthleteID = record.IntID(*n.AthleteID)
	}

	return rec, nil
}

func (m *Match) matches(r record.Record) bool {
	if m.Name != nil && r.Name != *m.Name {
		return false
	}

	if m.Season != nil && r.Season != *m.Season {
		return false
	}

	if m.TimeSeconds != nil && r.TimeSeconds != *m.TimeSeconds {
		return false
	}

	if m.EventID != nil && r.EventID != *m.EventID {
		return false
	}

	if m.Gender != nil && string(r.Gender) != *m.Gender {
		return false
	}

	return true
}

func (ch *Changes) apply(r *record.Record) error {
	if ch.Name != nil {
		r.Name = *ch.Name
	}

	if ch.Season != nil {
		r.Season = *ch.Season
	}

	if ch.Date != nil {
		date, err := time.Parse(record.DateLayout, *ch.Date)
		if err != nil {
			return fmt.Errorf("invalid date %q", *ch.Date)
		}

		r.Date = date.UTC()
	}

	if ch.Team != nil {
		r.Team = *ch.Team
	}

	if ch.Time != nil {
		seconds, err := swimtime.Parse(*ch.Time)
		if err != nil {
			return err
		}

		r.TimeDisplay = *ch.Time
		r.TimeSeconds = seconds
	} else if ch.TimeSeconds != nil {
		r.TimeSeconds = *ch.TimeSeconds
		r.TimeDisplay = swimtime.Format(*ch.TimeSeconds)
	}

	return nil
}
