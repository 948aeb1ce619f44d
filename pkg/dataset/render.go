package dataset

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render prints a compact progression view of the rows: the columns a
// reviewer needs to eyeball one event's history, not the full dataset.
func Render(w io.Writer, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{
		"Season", "Name", "Team", "Time", "Broken By", "New Holder",
	})

	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Season,
			r.Name,
			r.Team,
			r.TimeDisplay,
			formatFloat(r.BrokenBy, 2),
			r.NewHolder,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// FilterEvent keeps the rows of one (event id, gender) partition.
func FilterEvent(rows []Row, eventID int, gender string) []Row {
	out := make([]Row, 0, len(rows))

	for _, r := range rows {
		if r.EventID == eventID && string(r.Gender) == gender {
			out = append(out, r)
		}
	}

	return out
}
