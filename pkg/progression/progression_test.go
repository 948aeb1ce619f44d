package progression_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/progression"
	"github.com/swimlytics/recordtrail/pkg/record"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return log
}

func row(name string, seconds float64, season, eventID int, gender event.Gender) record.Record {
	return record.Record{
		Name: name, Stroke: event.Freestyle, Gender: gender,
		Season: season, TimeSeconds: seconds, EventID: eventID,
	}
}

func TestComputeTiedAndFinalRows(t *testing.T) {
	e := progression.New(testLogger())

	// Canonical order: ascending time, the 1990 mark last. B and C tie.
	table := record.Table{
		row("B", 99.00, 1991, 1, event.Male),
		row("C", 99.00, 1991, 1, event.Male),
		row("A", 100.00, 1990, 1, event.Male),
	}

	res := e.Compute(table)
	require.Len(t, res.Stats, 3)
	assert.Empty(t, res.Diagnostics)

	// B improved nothing over the tied C.
	b := res.Stats[0]
	require.NotNil(t, b.BrokenBy)
	assert.Zero(t, *b.BrokenBy)
	require.NotNil(t, b.ImprovementPct)
	assert.Zero(t, *b.ImprovementPct)
	require.NotNil(t, b.SeasonsBetweenRecords)
	assert.Zero(t, *b.SeasonsBetweenRecords)

	// C took a full second off the 1990 record.
	c := res.Stats[1]
	require.NotNil(t, c.BrokenBy)
	assert.InDelta(t, 1.00, *c.BrokenBy, 1e-9)
	require.NotNil(t, c.ImprovementPct)
	assert.InDelta(t, 1.00, *c.ImprovementPct, 1e-9)
	require.NotNil(t, c.SeasonsBetweenRecords)
	assert.Equal(t, 1, *c.SeasonsBetweenRecords)

	// The oldest record has nothing behind it.
	a := res.Stats[2]
	assert.Nil(t, a.BrokenBy)
	assert.Nil(t, a.ImprovementPct)
	assert.Nil(t, a.SeasonsBetweenRecords)
	assert.True(t, a.NewHolder)
}

func TestComputeSingletonPartition(t *testing.T) {
	e := progression.New(testLogger())

	res := e.Compute(record.Table{row("Solo", 19.05, 1990, 1, event.Male)})
	require.Len(t, res.Stats, 1)

	got := res.Stats[0]
	assert.Nil(t, got.BrokenBy)
	assert.Nil(t, got.ImprovementPct)
	assert.Nil(t, got.HolderBrokenBy)
	assert.Nil(t, got.SeasonsBetweenRecords)
	assert.Nil(t, got.SeasonsBetweenHolders)
	assert.True(t, got.NewHolder)
}

func TestComputeHolderAggregation(t *testing.T) {
	e := progression.New(testLogger())

	coughlin := record.IntID(700)
	other := record.IntID(800)

	table := record.Table{
		{Name: "Natalie Coughlin", Stroke: event.Backstroke, Gender: event.Female,
			Season: 2002, TimeSeconds: 50.01, EventID: 7, AthleteID: coughlin},
		{Name: "Natalie Coughlin", Stroke: event.Backstroke, Gender: event.Female,
			Season: 2001, TimeSeconds: 51.00, EventID: 7, AthleteID: coughlin},
		{Name: "Marylyn Chiang", Stroke: event.Backstroke, Gender: event.Female,
			Season: 1999, TimeSeconds: 52.00, EventID: 7, AthleteID: other},
	}

	res := e.Compute(table)
	require.Len(t, res.Stats, 3)

	// Total improvement is summed over both Coughlin rows and lands on her
	// fastest row only.
	first := res.Stats[0]
	require.NotNil(t, first.HolderBrokenBy)
	assert.InDelta(t, 1.99, *first.HolderBrokenBy, 1e-9)
	require.NotNil(t, first.HolderImprovementPct)
	assert.InDelta(t, 1.99/52.00*100, *first.HolderImprovementPct, 1e-9)

	second := res.Stats[1]
	assert.Nil(t, second.HolderBrokenBy)
	assert.Nil(t, second.HolderImprovementPct)

	// The oldest row has a nil delta and never receives holder totals.
	assert.Nil(t, res.Stats[2].HolderBrokenBy)
}

func TestComputeNewHolderFlags(t *testing.T) {
	e := progression.New(testLogger())

	coughlin := record.IntID(700)

	table := record.Table{
		{Name: "Natalie Coughlin", Stroke: event.Backstroke, Gender: event.Female,
			Season: 2002, TimeSeconds: 50.01, EventID: 7, AthleteID: coughlin},
		{Name: "Natalie Coughlin", Stroke: event.Backstroke, Gender: event.Female,
			Season: 2001, TimeSeconds: 51.00, EventID: 7, AthleteID: coughlin},
		{Name: "Marylyn Chiang", Stroke: event.Backstroke, Gender: event.Female,
			Season: 1999, TimeSeconds: 52.00, EventID: 7, AthleteID: record.IntID(800)},
	}

	res := e.Compute(table)

	// Oldest to newest: Chiang sets the record, Coughlin takes it in 2001
	// and keeps it in 2002.
	assert.True(t, res.Stats[2].NewHolder)
	assert.Nil(t, res.Stats[2].SeasonsBetweenHolders)

	assert.True(t, res.Stats[1].NewHolder)
	require.NotNil(t, res.Stats[1].SeasonsBetweenHolders)
	assert.Equal(t, 2, *res.Stats[1].SeasonsBetweenHolders)

	assert.False(t, res.Stats[0].NewHolder)
	assert.Nil(t, res.Stats[0].SeasonsBetweenHolders)
}

func TestComputeRelaysExcludedFromHolderStats(t *testing.T) {
	e := progression.New(testLogger())

	table := record.Table{
		{Name: "California", Stroke: event.FreestyleRelay, Gender: event.Female,
			Season: 2019, TimeSeconds: 84.47, EventID: 15},
		{Name: "Stanford", Stroke: event.FreestyleRelay, Gender: event.Female,
			Season: 2017, TimeSeconds: 85.00, EventID: 15},
	}

	res := e.Compute(table)

	// Deltas still apply to relays.
	require.NotNil(t, res.Stats[0].BrokenBy)
	assert.InDelta(t, 0.53, *res.Stats[0].BrokenBy, 1e-9)

	// Holder aggregates never do.
	assert.Nil(t, res.Stats[0].HolderBrokenBy)
	assert.Nil(t, res.Stats[0].HolderImprovementPct)

	// The holder flag tracks the team name.
	assert.True(t, res.Stats[0].NewHolder)
	assert.True(t, res.Stats[1].NewHolder)
}

func TestComputeTimeInversionDiagnostic(t *testing.T) {
	e := progression.New(testLogger())

	// A table that violates canonical order beyond a tie.
	table := record.Table{
		row("Fast", 100.00, 1990, 1, event.Male),
		row("Faster", 99.00, 1991, 1, event.Male),
	}

	res := e.Compute(table)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Diagnostics[0].Index)

	// The delta clamps to zero instead of going negative.
	require.NotNil(t, res.Stats[0].BrokenBy)
	assert.Zero(t, *res.Stats[0].BrokenBy)
}

func TestComputePartitionBoundaries(t *testing.T) {
	e := progression.New(testLogger())

	table := record.Table{
		row("A", 19.00, 2000, 1, event.Male),
		row("B", 20.00, 1990, 1, event.Male),
		// New partition: same event, other gender.
		row("C", 21.00, 2010, 1, event.Female),
	}

	res := e.Compute(table)

	// B closes the men's partition and C opens the women's: both nil.
	assert.NotNil(t, res.Stats[0].BrokenBy)
	assert.Nil(t, res.Stats[1].BrokenBy)
	assert.Nil(t, res.Stats[2].BrokenBy)
	assert.True(t, res.Stats[2].NewHolder)
}
