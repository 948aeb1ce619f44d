// Package store merges record tables from multiple sources, applies
// versioned correction patches and establishes the canonical sort order the
// progression engine depends on.
package store

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// Store is the merge and correction layer.
type Store struct {
	log logrus.FieldLogger
}

// New creates a store.
func New(log logrus.FieldLogger) *Store {
	return &Store{log: log.WithField("component", "store")}
}

// Merge concatenates the tables and deduplicates on the (name, time,
// season) merge key, keeping the first occurrence. Merging is idempotent:
// merging a merged table with itself returns the same rows.
func (s *Store) Merge(tables ...record.Table) record.Table {
	var total int
	for _, t := range tables {
		total += len(t)
	}

	out := make(record.Table, 0, total)
	seen := make(map[record.MergeKey]struct{}, total)

	for _, t := range tables {
		for _, r := range t {
			key := r.Key()
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			out = append(out, r)
		}
	}

	s.log.WithFields(logrus.Fields{
		"input":  total,
		"merged": len(out),
	}).Info("Merged record tables")

	return out.Clone()
}

// SortCanonical returns the table in canonical order: event id, gender,
// ascending time, then season. The sort is stable, so rows that tie on all
// four keys keep their input order.
func SortCanonical(t record.Table) record.Table {
	out := t.Clone()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}

		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}

		if a.TimeSeconds != b.TimeSeconds {
			return a.TimeSeconds < b.TimeSeconds
		}

		return a.Season < b.Season
	})

	return out
}
