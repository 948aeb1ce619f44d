package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
	"github.com/swimlytics/recordtrail/pkg/store"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return log
}

func sprint(name string, seconds float64, season int) record.Record {
	return record.Record{
		Name: name, Distance: 50, Stroke: event.Freestyle,
		Course: event.CourseSCY, Gender: event.Male, Season: season,
		TimeSeconds: seconds, EventID: 1,
	}
}

func TestMergeKeepsFirstOnDuplicateKey(t *testing.T) {
	s := store.New(testLogger())

	a := record.Table{sprint("Tom Jager", 19.05, 1990)}
	a[0].Team = "UCLA"

	b := record.Table{sprint("Tom Jager", 19.05, 1990)}
	b[0].Team = "ucla-scraped"

	got := s.Merge(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, "UCLA", got[0].Team)
}

func TestMergeIsIdempotent(t *testing.T) {
	s := store.New(testLogger())

	merged := s.Merge(
		record.Table{sprint("A", 20.00, 1990), sprint("B", 19.50, 1991)},
		record.Table{sprint("A", 20.00, 1990)},
	)
	require.Len(t, merged, 2)

	again := s.Merge(merged, merged)
	assert.Equal(t, merged, again)
}

func TestMergeKeepsDistinctNamesWithTiedTimes(t *testing.T) {
	s := store.New(testLogger())

	got := s.Merge(record.Table{
		sprint("A", 100.00, 1990),
		sprint("B", 99.00, 1991),
		sprint("C", 99.00, 1991),
	})

	assert.Len(t, got, 3)
}

func TestSortCanonical(t *testing.T) {
	src := record.Table{
		sprint("A", 100.00, 1990),
		sprint("B", 99.00, 1991),
		sprint("C", 99.00, 1991),
	}
	src = append(src, record.Record{
		Name: "D", Distance: 100, Stroke: event.Freestyle, Gender: event.Female,
		Season: 2000, TimeSeconds: 47.00, EventID: 2,
	})

	got := store.SortCanonical(src)
	require.Len(t, got, 4)

	// Ascending time within the partition; B precedes C on the full-key tie
	// because the sort is stable.
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "C", got[1].Name)
	assert.Equal(t, "A", got[2].Name)
	assert.Equal(t, "D", got[3].Name)

	// The input order is untouched.
	assert.Equal(t, "A", src[0].Name)
}

func TestCorrectInsertAmendDelete(t *testing.T) {
	s := store.New(testLogger())

	src := record.Table{
		sprint("Anthony Ervin", 19.15, 2001),
		sprint("Roland Schoeman", 19.03, 2002),
	}

	jager := &store.NewRecord{
		Name: "Tom Jager", Distance: 50, Stroke: "FR", Gender: "M",
		Season: 1990, Time: "19.05", Team: "UCLA",
	}
	season2002 := 2002

	got, err := s.Correct(src, []store.Correction{
		{Op: store.OpInsert, Record: jager},
		{Op: store.OpDelete, Match: &store.Match{Name: strPtr("Roland Schoeman")}},
		{Op: store.OpAmend,
			Match: &store.Match{Name: strPtr("Anthony Ervin")},
			Set:   &store.Changes{Season: &season2002}},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Anthony Ervin", got[0].Name)
	assert.Equal(t, 2002, got[0].Season)

	inserted := got[1]
	assert.Equal(t, "Tom Jager", inserted.Name)
	assert.InDelta(t, 19.05, inserted.TimeSeconds, 1e-9)
	assert.Equal(t, 1, inserted.EventID)
	assert.Equal(t, event.CourseSCY, inserted.Course)
	assert.Equal(t, 1990, inserted.Date.Year())

	// The source table is untouched.
	assert.Equal(t, 2001, src[0].Season)
	assert.Len(t, src, 2)
}

func TestCorrectDeleteThenReinsert(t *testing.T) {
	s := store.New(testLogger())

	src := record.Table{sprint("X", 19.50, 2005)}

	got, err := s.Correct(src, []store.Correction{
		{Op: store.OpDelete, Match: &store.Match{Name: strPtr("X")}},
		{Op: store.OpInsert, Record: &store.NewRecord{
			Name: "X", Distance: 50, Stroke: "FR", Gender: "M",
			Season: 2005, Time: "19.40",
		}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 19.40, got[0].TimeSeconds, 1e-9)
}

func TestCorrectInsertConflict(t *testing.T) {
	s := store.New(testLogger())

	src := record.Table{sprint("X", 19.50, 2005)}

	_, err := s.Correct(src, []store.Correction{
		{Op: store.OpInsert, Record: &store.NewRecord{
			Name: "X", Distance: 50, Stroke: "FR", Gender: "M",
			Season: 2005, Time: "19.50",
		}},
	})
	require.Error(t, err)

	var conflict *store.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "X", conflict.Key.Name)
}

func TestCorrectAmendTimeRecomputesSeconds(t *testing.T) {
	s := store.New(testLogger())

	src := record.Table{sprint("Julia Smit", 238.23, 2010)}
	newTime := "4:00.56"

	got, err := s.Correct(src, []store.Correction{
		{Op: store.OpAmend,
			Match: &store.Match{Name: strPtr("Julia Smit")},
			Set:   &store.Changes{Time: &newTime}},
	})
	require.NoError(t, err)
	assert.Equal(t, "4:00.56", got[0].TimeDisplay)
	assert.InDelta(t, 240.56, got[0].TimeSeconds, 1e-9)
}

func TestLoadCorrections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.yaml")

	patch := `- op: insert
  note: missing 1990 record
  record:
    name: Tom Jager
    distance: 50
    stroke: FR
    gender: M
    season: 1990
    time: "19.05"
    team: UCLA
- op: delete
  note: duplicate spelling of Kelsi Worrell
  match:
    name: Kelsi Dahlia
- op: amend
  match:
    name: Annie Chandler
  set:
    season: 2010
    date: "2010-01-01"
`
	require.NoError(t, os.WriteFile(path, []byte(patch), 0o644))

	got, err := store.LoadCorrections(path)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, store.OpInsert, got[0].Op)
	require.NotNil(t, got[0].Record)
	assert.Equal(t, "Tom Jager", got[0].Record.Name)

	require.NotNil(t, got[1].Match)
	assert.Equal(t, "Kelsi Dahlia", *got[1].Match.Name)

	require.NotNil(t, got[2].Set)
	assert.Equal(t, 2010, *got[2].Set.Season)
}

func TestLoadCorrectionsRejectsUnknownOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- op: upsert\n"), 0o644))

	_, err := store.LoadCorrections(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown op")
}

func strPtr(s string) *string {
	return &s
}
