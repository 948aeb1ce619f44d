// Package resulttext parses record lines scraped from championship meet
// result PDFs. Two historical layouts exist: the 2002-2005 archives print
// "NCAA Record:" lines with the season last, the 2006-onward archives print
// "NCAA:" lines with the swim date second. Both pair an event header line
// with a record line positionally within a page.
package resulttext

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// Era selects the grammar for a source file.
type Era int

const (
	// EraEarly covers the 2002-2005 result archives.
	EraEarly Era = iota
	// EraLater covers the 2006-onward result archives.
	EraLater
)

// EraForYear returns the grammar era for a championship year.
func EraForYear(year int) Era {
	if year < 2006 {
		return EraEarly
	}

	return EraLater
}

// UnparsableRecordError reports a record line that does not match the
// expected field layout. The raw line is preserved for manual review.
type UnparsableRecordError struct {
	Line   string
	Reason string
}

func (e *UnparsableRecordError) Error() string {
	return fmt.Sprintf("unparsable record line %q: %s", e.Line, e.Reason)
}

// grammar holds the line-classification prefixes of one era.
type grammar struct {
	eventPrefixes  []string
	recordPrefixes []string
	skipEvents     []string
}

var grammars = map[Era]grammar{
	EraEarly: {
		eventPrefixes:  []string{"EVENT"},
		recordPrefixes: []string{"NCAA:", "Championship", "NCAA Record"},
		skipEvents:     []string{"DIVING", "Diving", "Platform", "Meter"},
	},
	EraLater: {
		eventPrefixes:  []string{"Event", "Men"},
		recordPrefixes: []string{"NCAA:", "Championship"},
		skipEvents:     []string{"Diving", "Swim-off"},
	},
}

// Page is the text lines of one extracted PDF page.
type Page []string

// SplitPages splits extracted text into pages on form feeds and lines on
// newlines, dropping blank lines.
func SplitPages(text string) []Page {
	var pages []Page

	for _, chunk := range strings.Split(text, "\f") {
		var page Page

		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimRight(line, "\r ")
			if line != "" {
				page = append(page, line)
			}
		}

		if len(page) > 0 {
			pages = append(pages, page)
		}
	}

	return pages
}

// SkippedLine is a record line that failed to parse, kept for manual review.
type SkippedLine struct {
	Event string
	Line  string
	Err   error
}

// Result is the outcome of scanning one source file: the records that
// parsed and the lines that did not. Skipped lines never abort the scan.
type Result struct {
	Records record.Table
	Skipped []SkippedLine
}

// Parser scans scraped result pages under one era's grammar.
type Parser struct {
	log logrus.FieldLogger
	era Era
}

// New creates a parser for the given era.
func New(log logrus.FieldLogger, era Era) *Parser {
	return &Parser{
		log: log.WithField("component", "resulttext"),
		era: era,
	}
}

// ParsePages scans the pages of one source file. Event headers and record
// lines are classified by prefix and paired positionally per page; repeated
// headers and record lines (results PDFs restate them across pages) are
// processed once per file.
func (p *Parser) ParsePages(pages []Page) Result {
	g := grammars[p.era]

	var res Result

	seenEvents := make(map[string]struct{})
	seenRecords := make(map[string]struct{})

	for _, page := range pages {
		var eventLines, recordLines []string

		for _, line := range page {
			switch {
			case hasAnyPrefix(line, g.eventPrefixes):
				eventLines = append(eventLines, line)
			case hasAnyPrefix(line, g.recordPrefixes):
				recordLines = append(recordLines, line)
			}
		}

		for j, eventLine := range eventLines {
			if _, ok := seenEvents[eventLine]; ok {
				continue
			}

			seenEvents[eventLine] = struct{}{}

			if j >= len(recordLines) {
				continue
			}

			recordLine := recordLines[j]
			if _, ok := seenRecords[recordLine]; ok {
				continue
			}

			seenRecords[recordLine] = struct{}{}

			if containsAny(eventLine, g.skipEvents) {
				continue
			}

			rec, err := p.parsePair(eventLine, recordLine)
			if err != nil {
				p.log.WithError(err).WithFields(logrus.Fields{
					"event": eventLine,
					"line":  recordLine,
				}).Warn("Skipping unparsable record line")

				res.Skipped = append(res.Skipped, SkippedLine{
					Event: eventLine,
					Line:  recordLine,
					Err:   err,
				})

				continue
			}

			res.Records = append(res.Records, rec)
		}
	}

	return res
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}

func containsAny(line string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(line, sub) {
			return true
		}
	}

	return false
}
