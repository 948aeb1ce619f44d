// Package record defines the normalized performance record and the in-memory
// table the pipeline transforms. Tables are value slices; every transform
// returns a new table and leaves its input untouched.
package record

import (
	"fmt"
	"time"

	"github.com/swimlytics/recordtrail/pkg/event"
)

// Record is one performance that was, at some point, the fastest known time
// in its event/gender group.
type Record struct {
	// Name is the athlete display name. Relay entries carry the team name.
	Name     string
	Distance int
	Stroke   event.Stroke
	Course   string
	Gender   event.Gender

	// Season is the academic-year label; Date is the calendar date the season
	// was derived from, when the source supplied one.
	Season int
	Date   time.Time

	TimeSeconds float64
	TimeDisplay string

	Team       string
	Conference string
	Meet       string
	Session    string

	// EventID is derived from (Distance, Stroke) via the fixed event table.
	EventID int

	// AthleteID, TeamID and MeetID are nil until assigned or when the source
	// did not supply them. Relay rows never receive an athlete id.
	AthleteID *int
	TeamID    *int
	MeetID    *int
}

// Table is an ordered collection of records.
type Table []Record

// IsRelay reports whether the record belongs to a relay event.
func (r Record) IsRelay() bool {
	return r.Stroke.IsRelay()
}

// MergeKey is the primary deduplication key used when merging sources that
// lack provenance ids.
type MergeKey struct {
	Name        string
	TimeSeconds float64
	Season      int
}

// Key returns the record's primary merge key.
func (r Record) Key() MergeKey {
	return MergeKey{Name: r.Name, TimeSeconds: r.TimeSeconds, Season: r.Season}
}

// ProvenanceKey deduplicates rows from sources that carry meet and athlete
// identifiers.
type ProvenanceKey struct {
	MeetID    int
	AthleteID int
	EventID   int
}

// HasProvenance reports whether the record carries the ids needed for the
// provenance key.
func (r Record) HasProvenance() bool {
	return r.MeetID != nil && r.AthleteID != nil && r.EventID != 0
}

// Provenance returns the provenance key. It panics if HasProvenance is false;
// callers check first.
func (r Record) Provenance() ProvenanceKey {
	return ProvenanceKey{MeetID: *r.MeetID, AthleteID: *r.AthleteID, EventID: r.EventID}
}

// HolderKey identifies the record holder: the athlete id when one exists,
// otherwise the display name (relays resolve to their team name).
func (r Record) HolderKey() string {
	if r.AthleteID != nil {
		return fmt.Sprintf("athlete:%d", *r.AthleteID)
	}

	return "name:" + r.Name
}

// Clone returns a deep copy of the table. Pointer-valued ids are copied so
// mutations of the clone never leak into the source rows.
func (t Table) Clone() Table {
	out := make(Table, len(t))

	for i, r := range t {
		out[i] = r
		out[i].AthleteID = cloneID(r.AthleteID)
		out[i].TeamID = cloneID(r.TeamID)
		out[i].MeetID = cloneID(r.MeetID)
	}

	return out
}

// Filter returns the rows for which keep returns true, preserving order.
func (t Table) Filter(keep func(Record) bool) Table {
	out := make(Table, 0, len(t))

	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}

	return out
}

// IntID is a convenience for building optional id fields.
func IntID(v int) *int {
	return &v
}

func cloneID(p *int) *int {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
