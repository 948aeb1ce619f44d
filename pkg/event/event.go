// Package event defines the fixed vocabulary of championship swimming events:
// stroke codes, the distance/stroke to event id table, genders, the course
// marker and academic-season derivation.
package event

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stroke is the short code used throughout the dataset.
type Stroke string

// Stroke codes. Relay codes keep their long form so that relay detection
// can key off the "Relay" substring, matching the source data convention.
const (
	Freestyle      Stroke = "FR"
	Backstroke     Stroke = "BK"
	Breaststroke   Stroke = "BR"
	Butterfly      Stroke = "FL"
	IM             Stroke = "IM"
	FreestyleRelay Stroke = "Freestyle Relay"
	MedleyRelay    Stroke = "Medley Relay"
)

// Gender is the binary category used by the record lists.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// CourseSCY marks short course yards, the only course in this corpus.
const CourseSCY = "SCY"

// UnknownStrokeError reports a stroke name outside the fixed vocabulary.
type UnknownStrokeError struct {
	Name string
}

func (e *UnknownStrokeError) Error() string {
	return fmt.Sprintf("unknown stroke %q", e.Name)
}

// UnknownEventError reports a distance/stroke pair absent from the event table.
type UnknownEventError struct {
	Distance int
	Stroke   Stroke
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("no event id for %d yard %s", e.Distance, e.Stroke)
}

// strokeNames maps display names to codes. The "(cid:976)" entry covers a
// glyph-extraction artifact that appears in some result PDFs.
var strokeNames = map[string]Stroke{
	"Freestyle":         Freestyle,
	"Backstroke":        Backstroke,
	"Breaststroke":      Breaststroke,
	"Butterfly":         Butterfly,
	"Butter(cid:976)ly": Butterfly,
	"IM":                IM,
	"Im":                IM,
	"Individual Medley": IM,
	"Medley Relay":      MedleyRelay,
	"Freestyle Relay":   FreestyleRelay,
}

// ParseStroke maps a display stroke name to its code.
func ParseStroke(name string) (Stroke, error) {
	name = strings.TrimSpace(name)

	if code, ok := strokeNames[name]; ok {
		return code, nil
	}

	return "", &UnknownStrokeError{Name: name}
}

// IsRelay reports whether the stroke denotes a relay event. Relay rows carry
// no individual athlete and are exempt from athlete id assignment.
func (s Stroke) IsRelay() bool {
	return strings.Contains(string(s), "Relay")
}

// eventIDs is the fixed distance x stroke lookup. The mapping is total and
// injective over the supported championship program.
var eventIDs = map[int]map[Stroke]int{
	50:   {Freestyle: 1},
	100:  {Freestyle: 2, Backstroke: 7, Breaststroke: 9, Butterfly: 11},
	200:  {Freestyle: 3, Backstroke: 8, Breaststroke: 10, Butterfly: 12, IM: 13, FreestyleRelay: 15, MedleyRelay: 18},
	400:  {IM: 14, FreestyleRelay: 16, MedleyRelay: 19},
	500:  {Freestyle: 4},
	800:  {FreestyleRelay: 17},
	1000: {Freestyle: 5},
	1650: {Freestyle: 6},
}

// ID returns the event id for a distance/stroke pair.
func ID(distance int, stroke Stroke) (int, error) {
	if byStroke, ok := eventIDs[distance]; ok {
		if id, ok := byStroke[stroke]; ok {
			return id, nil
		}
	}

	return 0, &UnknownEventError{Distance: distance, Stroke: stroke}
}

// Definition pairs a distance and stroke with their event id.
type Definition struct {
	Distance int
	Stroke   Stroke
	ID       int
}

// Supported enumerates every entry of the event table, ordered by id.
func Supported() []Definition {
	defs := make([]Definition, 0, 19)

	for distance, byStroke := range eventIDs {
		for stroke, id := range byStroke {
			defs = append(defs, Definition{Distance: distance, Stroke: stroke, ID: id})
		}
	}

	// Map iteration order is random; present the program in id order.
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })

	return defs
}

// SeasonOf assigns a calendar date to an academic season. Championship
// seasons roll over in September: a September swim belongs to the next
// year's season.
func SeasonOf(t time.Time) int {
	if t.Month() < time.September {
		return t.Year()
	}

	return t.Year() + 1
}
