// Package canonical resolves entities across merged record sources: team
// names collapse to canonical programs through an ordered alias table,
// athletes and teams receive stable numeric ids, and every row gets its
// event id from the fixed event table.
package canonical

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/event"
	"github.com/swimlytics/recordtrail/pkg/record"
)

// IDCollisionError reports that minting a fresh athlete id kept landing on
// ids already in use.
type IDCollisionError struct {
	Name     string
	Attempts int
}

func (e *IDCollisionError) Error() string {
	return fmt.Sprintf("could not mint athlete id for %q after %d attempts", e.Name, e.Attempts)
}

// Canonicalizer applies entity resolution to a merged table. The random
// source seeds minted athlete ids; a fixed seed makes runs reproducible.
type Canonicalizer struct {
	log   logrus.FieldLogger
	rules []AliasRule
	rng   *rand.Rand
}

// New creates a canonicalizer with the given alias rules. Pass
// DefaultAliasRules for the standard table.
func New(log logrus.FieldLogger, rules []AliasRule, seed int64) *Canonicalizer {
	return &Canonicalizer{
		log:   log.WithField("component", "canonical"),
		rules: rules,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Canonicalize returns a copy of the table with team names collapsed, team
// and athlete ids assigned, and event ids recomputed. The input table is
// left untouched.
func (c *Canonicalizer) Canonicalize(t record.Table) (record.Table, error) {
	out := t.Clone()

	c.applyTeamAliases(out)

	if err := c.resolveIDs(out); err != nil {
		return nil, err
	}

	return out, nil
}

// ResolveIDs assigns event, team and athlete ids without rewriting team
// names. Corrected tables go through this path: a team name set by a
// correction is authoritative and must not pass through the alias table
// again.
func (c *Canonicalizer) ResolveIDs(t record.Table) (record.Table, error) {
	out := t.Clone()

	if err := c.resolveIDs(out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Canonicalizer) resolveIDs(t record.Table) error {
	if err := c.assignEventIDs(t); err != nil {
		return err
	}

	c.assignTeamIDs(t)

	return c.assignAthleteIDs(t)
}

// assignEventIDs recomputes every row's event id from its distance and
// stroke, overriding whatever id the source carried.
func (c *Canonicalizer) assignEventIDs(t record.Table) error {
	for i := range t {
		id, err := event.ID(t[i].Distance, t[i].Stroke)
		if err != nil {
			return fmt.Errorf("row %d (%s): %w", i, t[i].Name, err)
		}

		t[i].EventID = id
	}

	return nil
}
