// Package progression computes record-progression statistics over a merged,
// corrected table in canonical order. Each (event, gender) partition is an
// ascending-time history: walking it from the slowest row to the fastest
// replays the record book oldest to newest.
package progression

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// Stats are the derived columns for one record row. Pointer fields are nil
// where the statistic is undefined: the fastest row of a partition has
// nothing that broke it, and holder aggregates appear only on the holder's
// first row per event.
type Stats struct {
	// BrokenBy is how many seconds the next-faster record took off this one.
	// Ties and out-of-order artifacts clamp to zero.
	BrokenBy       *float64
	ImprovementPct *float64

	// NewHolder marks rows where the record changed hands, walking the
	// partition oldest to newest.
	NewHolder            bool
	HolderBrokenBy       *float64
	HolderImprovementPct *float64

	SeasonsBetweenRecords *int
	SeasonsBetweenHolders *int
}

// Diagnostic flags a row that violated the ascending-time assumption beyond
// an exact tie. The stat is clamped to zero; the row is reported for review.
type Diagnostic struct {
	Index  int
	Reason string
}

// Result pairs per-row stats, aligned with the input table, with any
// ordering diagnostics.
type Result struct {
	Stats       []Stats
	Diagnostics []Diagnostic
}

// Engine computes progression statistics.
type Engine struct {
	log logrus.FieldLogger
}

// New creates an engine.
func New(log logrus.FieldLogger) *Engine {
	return &Engine{log: log.WithField("component", "progression")}
}

// partition is a contiguous run of rows sharing (event id, gender).
type partition struct {
	start, end int // [start, end)
}

// Compute derives progression statistics for a table in canonical order.
// The input is never mutated; stats come back in a parallel slice.
func (e *Engine) Compute(t record.Table) Result {
	res := Result{Stats: make([]Stats, len(t))}

	parts := partitions(t)

	for _, p := range parts {
		e.computeDeltas(t, p, &res)
		e.computeHolderFlags(t, p, &res)
	}

	// Holder aggregation spans partitions of one event: an athlete's rows
	// share (holder, event id) regardless of where they sit.
	e.computeHolderTotals(t, &res)

	e.log.WithFields(logrus.Fields{
		"rows":        len(t),
		"partitions":  len(parts),
		"diagnostics": len(res.Diagnostics),
	}).Info("Computed progression statistics")

	return res
}

func partitions(t record.Table) []partition {
	var parts []partition

	for start := 0; start < len(t); {
		end := start + 1
		for end < len(t) && t[end].EventID == t[start].EventID && t[end].Gender == t[start].Gender {
			end++
		}

		parts = append(parts, partition{start: start, end: end})
		start = end
	}

	return parts
}

// computeDeltas fills BrokenBy, ImprovementPct and SeasonsBetweenRecords.
// Row i is measured against row i+1, the record that stood before it; the
// last row of the partition is the oldest record and all three stay nil.
func (e *Engine) computeDeltas(t record.Table, p partition, res *Result) {
	for i := p.start; i < p.end-1; i++ {
		delta := t[i+1].TimeSeconds - t[i].TimeSeconds

		if delta < 0 {
			reason := fmt.Sprintf("time inversion: %.2f after %.2f", t[i+1].TimeSeconds, t[i].TimeSeconds)
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Index: i + 1, Reason: reason})

			e.log.WithFields(logrus.Fields{
				"row":  i + 1,
				"name": t[i+1].Name,
			}).Warn("Time inversion in canonical order")

			delta = 0
		}

		pct := delta / t[i+1].TimeSeconds * 100

		res.Stats[i].BrokenBy = fptr(delta)
		res.Stats[i].ImprovementPct = fptr(pct)

		gap := t[i+1].Season - t[i].Season
		if gap < 0 {
			gap = -gap
		}

		res.Stats[i].SeasonsBetweenRecords = iptr(gap)
	}
}

// computeHolderFlags walks the partition newest-last (slowest row first) and
// marks rows where the holder changed, recording the seasons elapsed since
// the previous change. A backwards season gap between tied rows leaves the
// elapsed value nil.
func (e *Engine) computeHolderFlags(t record.Table, p partition, res *Result) {
	var (
		prevHolder        string
		lastFlaggedSeason *int
	)

	for i := p.end - 1; i >= p.start; i-- {
		holder := t[i].HolderKey()

		if i == p.end-1 || holder != prevHolder {
			res.Stats[i].NewHolder = true

			if lastFlaggedSeason != nil {
				gap := t[i].Season - *lastFlaggedSeason
				if gap >= 0 {
					res.Stats[i].SeasonsBetweenHolders = iptr(gap)
				}
			}

			lastFlaggedSeason = iptr(t[i].Season)
		}

		prevHolder = holder
	}
}

// computeHolderTotals sums each holder's BrokenBy per event and attaches
// the total, with its percentage of the holder's final mark, to the
// holder's first row in canonical order. Relay rows carry no athlete and
// are excluded. Rows whose BrokenBy is nil never receive holder stats.
func (e *Engine) computeHolderTotals(t record.Table, res *Result) {
	type holderEvent struct {
		holder  string
		eventID int
	}

	firstRow := make(map[holderEvent]int)
	totals := make(map[holderEvent]float64)

	for i, r := range t {
		if r.IsRelay() {
			continue
		}

		key := holderEvent{holder: r.HolderKey(), eventID: r.EventID}

		if _, ok := firstRow[key]; !ok {
			firstRow[key] = i
		}

		if res.Stats[i].BrokenBy != nil {
			totals[key] += *res.Stats[i].BrokenBy
		}
	}

	for key, i := range firstRow {
		if res.Stats[i].BrokenBy == nil {
			continue
		}

		total := totals[key]
		pct := total / (t[i].TimeSeconds + total) * 100

		res.Stats[i].HolderBrokenBy = fptr(total)
		res.Stats[i].HolderImprovementPct = fptr(pct)
	}
}

func fptr(v float64) *float64 {
	return &v
}

func iptr(v int) *int {
	return &v
}
