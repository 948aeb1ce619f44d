package canonical_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swimlytics/recordtrail/pkg/canonical"
	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return log
}

func newCanonicalizer() *canonical.Canonicalizer {
	return canonical.New(testLogger(), canonical.DefaultAliasRules, 23)
}

func TestCanonicalTeam(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "CAL", want: "California"},
		{name: "Berkeley", want: "California"},
		{name: "California", want: "California"},
		{name: "Arizona St", want: "Arizona State"},
		{name: "ASU", want: "Arizona State"},
		// "ARIZ" sits after the Arizona State rule, so plain Arizona
		// spellings never collapse into Arizona State.
		{name: "ARIZ", want: "Arizona"},
		{name: "Southern Cali", want: "Southern California"},
		{name: "STAN", want: "Stanford"},
		{name: "GeorgiaS", want: "Georgia"},
		{name: "Floid", want: "Florida"},
		{name: "UCLA", want: "UCLA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonical.CanonicalTeam(canonical.DefaultAliasRules, tt.name))
		})
	}
}

func TestCanonicalizeAssignsTeamIDs(t *testing.T) {
	c := newCanonicalizer()

	src := record.Table{
		{Name: "A Smith", Distance: 50, Stroke: event.Freestyle, Gender: event.Male,
			Team: "Berkeley", TeamID: record.IntID(42), AthleteID: record.IntID(1)},
		{Name: "B Jones", Distance: 100, Stroke: event.Freestyle, Gender: event.Male,
			Team: "CAL", AthleteID: record.IntID(2)},
		{Name: "C Brown", Distance: 200, Stroke: event.Freestyle, Gender: event.Male,
			Team: "UCLA", AthleteID: record.IntID(3)},
	}

	got, err := c.Canonicalize(src)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Both California spellings collapse and share the id the first row
	// already carried.
	assert.Equal(t, "California", got[0].Team)
	assert.Equal(t, "California", got[1].Team)
	require.NotNil(t, got[1].TeamID)
	assert.Equal(t, 42, *got[1].TeamID)

	// UCLA has no existing id and gets the next ordinal.
	require.NotNil(t, got[2].TeamID)
	assert.Equal(t, 2, *got[2].TeamID)

	// The source table is untouched.
	assert.Nil(t, src[1].TeamID)
	assert.Equal(t, "CAL", src[1].Team)
}

func TestCanonicalizeAthleteIDTiers(t *testing.T) {
	c := newCanonicalizer()

	src := record.Table{
		// Carries its own id.
		{Name: "Katie Ledecky", Distance: 500, Stroke: event.Freestyle,
			Gender: event.Female, Team: "Stanford", AthleteID: record.IntID(70001)},
		// Same name without an id: inherits 70001.
		{Name: "Katie Ledecky", Distance: 1650, Stroke: event.Freestyle,
			Gender: event.Female, Team: "Stanford"},
		// Unknown everywhere: gets a minted id.
		{Name: "Misty Hyman", Distance: 100, Stroke: event.Butterfly,
			Gender: event.Female, Team: "Stanford"},
		{Name: "Misty Hyman", Distance: 200, Stroke: event.Butterfly,
			Gender: event.Female, Team: "Stanford"},
		// Relay rows never receive an athlete id.
		{Name: "Stanford", Distance: 400, Stroke: event.MedleyRelay,
			Gender: event.Female, Team: "Stanford"},
	}

	got, err := c.Canonicalize(src)
	require.NoError(t, err)

	require.NotNil(t, got[1].AthleteID)
	assert.Equal(t, 70001, *got[1].AthleteID)

	require.NotNil(t, got[2].AthleteID)
	assert.GreaterOrEqual(t, *got[2].AthleteID, 100000)
	assert.LessOrEqual(t, *got[2].AthleteID, 999999)

	// Both Hyman rows resolve to the same minted id.
	require.NotNil(t, got[3].AthleteID)
	assert.Equal(t, *got[2].AthleteID, *got[3].AthleteID)

	assert.Nil(t, got[4].AthleteID)
}

func TestResolveIDsKeepsCorrectedTeamNames(t *testing.T) {
	c := newCanonicalizer()

	// "Texas A&M" matches the Texas alias rule. After a correction sets it,
	// the id pass must leave the name alone while still filling in ids.
	src := record.Table{
		{Name: "Breeja Larson", Distance: 100, Stroke: event.Breaststroke,
			Gender: event.Female, Team: "Texas A&M"},
		{Name: "A Smith", Distance: 50, Stroke: event.Freestyle,
			Gender: event.Male, Team: "Texas", TeamID: record.IntID(7),
			AthleteID: record.IntID(1)},
	}

	got, err := c.ResolveIDs(src)
	require.NoError(t, err)

	assert.Equal(t, "Texas A&M", got[0].Team)
	require.NotNil(t, got[0].TeamID)
	require.NotNil(t, got[1].TeamID)
	assert.NotEqual(t, *got[1].TeamID, *got[0].TeamID)
	assert.Equal(t, 7, *got[1].TeamID)

	require.NotNil(t, got[0].AthleteID)
	assert.GreaterOrEqual(t, *got[0].AthleteID, 100000)

	// Canonicalize, by contrast, still collapses through the alias table.
	aliased, err := c.Canonicalize(src)
	require.NoError(t, err)
	assert.Equal(t, "Texas", aliased[0].Team)
}

func TestCanonicalizeMintingIsReproducible(t *testing.T) {
	src := record.Table{
		{Name: "Misty Hyman", Distance: 100, Stroke: event.Butterfly,
			Gender: event.Female, Team: "Stanford"},
	}

	first, err := newCanonicalizer().Canonicalize(src)
	require.NoError(t, err)

	second, err := newCanonicalizer().Canonicalize(src)
	require.NoError(t, err)

	require.NotNil(t, first[0].AthleteID)
	require.NotNil(t, second[0].AthleteID)
	assert.Equal(t, *first[0].AthleteID, *second[0].AthleteID)
}

func TestCanonicalizeRecomputesEventIDs(t *testing.T) {
	c := newCanonicalizer()

	src := record.Table{
		// The source's event id is its own vocabulary and gets replaced.
		{Name: "A Smith", Distance: 200, Stroke: event.IM, Gender: event.Male,
			Team: "Texas", EventID: 4242, AthleteID: record.IntID(1)},
	}

	got, err := c.Canonicalize(src)
	require.NoError(t, err)
	assert.Equal(t, 13, got[0].EventID)
}

func TestCanonicalizeUnknownEvent(t *testing.T) {
	c := newCanonicalizer()

	src := record.Table{
		{Name: "A Smith", Distance: 75, Stroke: event.Freestyle,
			Gender: event.Male, Team: "Texas"},
	}

	_, err := c.Canonicalize(src)
	require.Error(t, err)

	var unknown *event.UnknownEventError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 75, unknown.Distance)
}

func TestAuditNames(t *testing.T) {
	c := newCanonicalizer()

	table := record.Table{
		{Name: "Caeleb Dressel", Stroke: event.Freestyle, AthleteID: record.IntID(1)},
		{Name: "Caeleb Dressell", Stroke: event.Freestyle, AthleteID: record.IntID(2)},
		{Name: "Katie Ledecky", Stroke: event.Freestyle, AthleteID: record.IntID(3)},
		// Same athlete id on both spellings: already resolved, not flagged.
		{Name: "Kelsi Worrell", Stroke: event.Butterfly, AthleteID: record.IntID(4)},
		{Name: "Kelsi Worrel", Stroke: event.Butterfly, AthleteID: record.IntID(4)},
		// Relay rows are team names and stay out of the audit.
		{Name: "California", Stroke: event.FreestyleRelay},
	}

	pairs := c.AuditNames(table, 0.95)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Caeleb Dressel", pairs[0].A)
	assert.Equal(t, "Caeleb Dressell", pairs[0].B)
	assert.GreaterOrEqual(t, pairs[0].Score, 0.95)
}
