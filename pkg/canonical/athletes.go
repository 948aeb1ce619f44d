package canonical

import (
	"github.com/sirupsen/logrus"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// Minted athlete ids stay within the six-digit range so they are visually
// distinct from governing-body person ids.
const (
	mintIDMin = 100000
	mintIDMax = 999999

	mintAttempts = 1000
)

// assignAthleteIDs resolves athlete ids in three tiers: ids carried by a
// source are kept, rows sharing a name with an identified row inherit that
// id, and the remaining athletes get a freshly minted id. Relay rows never
// carry an athlete id.
func (c *Canonicalizer) assignAthleteIDs(t record.Table) error {
	byName := make(map[string]int)
	used := make(map[int]struct{})

	for _, r := range t {
		if r.IsRelay() || r.AthleteID == nil {
			continue
		}

		used[*r.AthleteID] = struct{}{}

		if _, ok := byName[r.Name]; !ok {
			byName[r.Name] = *r.AthleteID
		}
	}

	var propagated, minted int

	for i := range t {
		if t[i].IsRelay() || t[i].AthleteID != nil {
			continue
		}

		id, ok := byName[t[i].Name]
		if ok {
			propagated++
		} else {
			fresh, err := c.mintID(used, t[i].Name)
			if err != nil {
				return err
			}

			byName[t[i].Name] = fresh
			id = fresh
			minted++
		}

		t[i].AthleteID = record.IntID(id)
	}

	c.log.WithFields(logrus.Fields{
		"propagated": propagated,
		"minted":     minted,
	}).Debug("Assigned athlete ids")

	return nil
}

// mintID draws an unused id from the mint range.
func (c *Canonicalizer) mintID(used map[int]struct{}, name string) (int, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		id := mintIDMin + c.rng.Intn(mintIDMax-mintIDMin+1)
		if _, taken := used[id]; taken {
			continue
		}

		used[id] = struct{}{}

		return id, nil
	}

	return 0, &IDCollisionError{Name: name, Attempts: mintAttempts}
}
