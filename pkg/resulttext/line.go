package resulttext

import (
	"strconv"
	"strings"
	"time"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
	"github.com/swimlytics/recordtrail/pkg/swimtime"
)

// header is the event context recovered from an event-header line.
type header struct {
	gender   event.Gender
	distance int
	stroke   event.Stroke
}

// genderMarkers per era, most specific first: the women's marker contains
// the men's marker as a substring in both layouts.
var genderMarkers = map[Era][]struct {
	marker string
	gender event.Gender
}{
	EraEarly: {
		{marker: "WOMEN's", gender: event.Female},
		{marker: "MEN's", gender: event.Male},
	},
	EraLater: {
		{marker: "Women", gender: event.Female},
		{marker: "Men", gender: event.Male},
	},
}

// parsePair converts one event-header / record-line pair into a draft record.
func (p *Parser) parsePair(eventLine, recordLine string) (record.Record, error) {
	hdr, err := p.parseHeader(eventLine)
	if err != nil {
		return record.Record{}, err
	}

	if p.era == EraEarly {
		return p.parseEarlyLine(hdr, recordLine)
	}

	return p.parseLaterLine(hdr, recordLine)
}

// parseHeader recovers (gender, distance, stroke) from an event-header line
// such as "EVENT 2 WOMEN's 500 Yard Freestyle" or
// "Event 13 Men 400 Yard Individual Medley".
func (p *Parser) parseHeader(line string) (header, error) {
	var (
		hdr  header
		rest string
	)

	for _, gm := range genderMarkers[p.era] {
		if idx := strings.Index(line, gm.marker); idx >= 0 {
			hdr.gender = gm.gender
			rest = strings.TrimSpace(line[idx+len(gm.marker):])

			break
		}
	}

	if hdr.gender == "" {
		return header{}, &UnparsableRecordError{Line: line, Reason: "no gender marker"}
	}

	parts := strings.SplitN(rest, "Yard", 2)
	if len(parts) != 2 {
		return header{}, &UnparsableRecordError{Line: line, Reason: "no Yard separator"}
	}

	distance, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return header{}, &UnparsableRecordError{Line: line, Reason: "non-numeric distance"}
	}

	strokeName := strings.TrimSpace(parts[1])
	if p.era == EraEarly {
		strokeName = titleCase(strokeName)
	}

	stroke, err := event.ParseStroke(strokeName)
	if err != nil {
		return header{}, err
	}

	hdr.distance = distance
	hdr.stroke = stroke

	return hdr, nil
}

// parseEarlyLine parses a 2002-2005 record line. Relay lines split into
// (time, team, season); individual lines into (time, first, last, team,
// season).
func (p *Parser) parseEarlyLine(hdr header, line string) (record.Record, error) {
	clean := cleanEarlyLine(line)

	var (
		timeField, team, name, seasonField string
	)

	if hdr.stroke.IsRelay() {
		parts := strings.SplitN(clean, " ", 3)
		if len(parts) != 3 {
			return record.Record{}, &UnparsableRecordError{
				Line:   line,
				Reason: "expected 3 fields for relay line",
			}
		}

		timeField, team, seasonField = parts[0], parts[1], parts[2]
	} else {
		parts := strings.SplitN(clean, " ", 5)
		if len(parts) != 5 {
			return record.Record{}, &UnparsableRecordError{
				Line:   line,
				Reason: "expected 5 fields for individual line",
			}
		}

		timeField = parts[0]
		name = strings.ReplaceAll(parts[1]+" "+parts[2], ",", "")
		team = parts[3]
		seasonField = parts[4]
	}

	season, err := strconv.Atoi(seasonField)
	if err != nil {
		return record.Record{}, &UnparsableRecordError{
			Line:   line,
			Reason: "non-numeric season field " + strconv.Quote(seasonField),
		}
	}

	team = titleCase(team)

	if name == "" {
		name = team
	} else {
		name = titleCase(name)
	}

	rec := record.Record{
		Name:     name,
		Distance: hdr.distance,
		Stroke:   hdr.stroke,
		Course:   event.CourseSCY,
		Gender:   hdr.gender,
		Season:   season,
		Date:     time.Date(season, time.January, 1, 0, 0, 0, 0, time.UTC),
		Team:     team,
	}

	if err := setTime(&rec, timeField, line); err != nil {
		return record.Record{}, err
	}

	return rec, nil
}

// parseLaterLine parses a 2006-onward record line. Relay lines split into
// (time, date, team); individual lines into (time, date, first, last, team).
func (p *Parser) parseLaterLine(hdr header, line string) (record.Record, error) {
	clean := cleanLaterLine(line)

	var (
		timeField, dateField, team, name string
	)

	if hdr.stroke.IsRelay() {
		parts := strings.SplitN(clean, " ", 3)
		if len(parts) != 3 {
			return record.Record{}, &UnparsableRecordError{
				Line:   line,
				Reason: "expected 3 fields for relay line",
			}
		}

		timeField, dateField, team = parts[0], parts[1], parts[2]
	} else {
		parts := strings.SplitN(clean, " ", 5)
		if len(parts) != 5 {
			return record.Record{}, &UnparsableRecordError{
				Line:   line,
				Reason: "expected 5 fields for individual line",
			}
		}

		timeField, dateField = parts[0], parts[1]
		name = parts[2] + " " + parts[3]
		team = parts[4]
	}

	team = cleanLaterTeam(team)

	if name == "" {
		name = team
	}

	date, err := parseLaterDate(dateField)
	if err != nil {
		return record.Record{}, &UnparsableRecordError{
			Line:   line,
			Reason: "unrecognized date " + strconv.Quote(dateField),
		}
	}

	rec := record.Record{
		Name:     name,
		Distance: hdr.distance,
		Stroke:   hdr.stroke,
		Course:   event.CourseSCY,
		Gender:   hdr.gender,
		Season:   event.SeasonOf(date),
		Date:     date,
		Team:     team,
	}

	if err := setTime(&rec, timeField, line); err != nil {
		return record.Record{}, err
	}

	return rec, nil
}

// setTime strips the leading-colon artifact, parses the display time and
// stores both forms on the record.
func setTime(rec *record.Record, timeField, line string) error {
	display := swimtime.StripLeadingColon(timeField)

	seconds, err := swimtime.Parse(display)
	if err != nil {
		return err
	}

	rec.TimeDisplay = display
	rec.TimeSeconds = seconds

	return nil
}

// cleanEarlyLine strips the record label and normalizes spacing.
func cleanEarlyLine(line string) string {
	for _, prefix := range []string{"NCAA Record:", "NCAA:", "Championship:"} {
		line = strings.TrimPrefix(line, prefix)
	}

	return collapseSpaces(strings.TrimSpace(line))
}

// cleanLaterLine strips the record label, the standard/qualifying flag
// letters and stray punctuation, and normalizes spacing.
func cleanLaterLine(line string) string {
	line = strings.ReplaceAll(line, "NCAA:", "")
	line = strings.ReplaceAll(line, "Championship:", "")
	line = strings.ReplaceAll(line, " N ", " ")
	line = strings.ReplaceAll(line, " I ", " ")
	line = strings.ReplaceAll(line, " C ", " ")
	line = strings.ReplaceAll(line, "!", "")
	line = strings.ReplaceAll(line, ",", "")

	// One archive prints the team glued to the date ("...7Kentucky").
	line = strings.ReplaceAll(line, "7K", "7 K")

	return collapseSpaces(strings.TrimSpace(line))
}

// cleanLaterTeam normalizes the free-text team tail of a later-era line:
// footnote suffixes after a dash, a doubled leading word, and the
// abbreviated "S California".
func cleanLaterTeam(team string) string {
	team = strings.TrimSpace(strings.SplitN(team, "-", 2)[0])

	if fields := strings.Fields(team); len(fields) > 1 && fields[0] == fields[1] {
		team = fields[0]
	}

	return strings.ReplaceAll(team, "S California", "Southern California")
}

// months maps the abbreviated month names used by the d-Mon-yy date form.
var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// parseLaterDate handles the three date forms of the later archives: a bare
// championship year ("2008"), "19-Mar-21", and slash dates.
func parseLaterDate(s string) (time.Time, error) {
	if len(s) == 4 {
		if year, err := strconv.Atoi(s); err == nil {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
		}
	}

	if strings.Contains(s, "-") {
		return parseDashDate(s)
	}

	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}

	return time.Time{}, &UnparsableRecordError{Line: s, Reason: "unrecognized date form"}
}

func parseDashDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, &UnparsableRecordError{Line: s, Reason: "unrecognized date form"}
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, &UnparsableRecordError{Line: s, Reason: "non-numeric day"}
	}

	month, ok := months[parts[1]]
	if !ok {
		return time.Time{}, &UnparsableRecordError{Line: s, Reason: "unknown month " + strconv.Quote(parts[1])}
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, &UnparsableRecordError{Line: s, Reason: "non-numeric year"}
	}

	if year < 100 {
		year += 2000
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// collapseSpaces squeezes runs of spaces down to single spaces.
func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	return s
}

// titleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest, matching the title casing the early archives need.
func titleCase(s string) string {
	words := strings.Fields(s)

	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}

	return strings.Join(words, " ")
}
