package canonical

import (
	"sort"

	"github.com/antzucaro/matchr"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// SimilarPair flags two athlete names that look like spellings of the same
// person. Pairs are reported for manual review and never merged
// automatically; a correction patch is the way to act on one.
type SimilarPair struct {
	A     string
	B     string
	Score float64
}

// AuditNames compares every pair of distinct non-relay athlete names with
// Jaro-Winkler similarity and returns the pairs scoring at or above the
// threshold, highest first. Pairs that already resolve to the same athlete
// id are not reported.
func (c *Canonicalizer) AuditNames(t record.Table, threshold float64) []SimilarPair {
	idByName := make(map[string]*int)

	var names []string

	for _, r := range t {
		if r.IsRelay() {
			continue
		}

		if _, ok := idByName[r.Name]; !ok {
			idByName[r.Name] = r.AthleteID
			names = append(names, r.Name)
		}
	}

	sort.Strings(names)

	var pairs []SimilarPair

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]

			if sameID(idByName[a], idByName[b]) {
				continue
			}

			score := matchr.JaroWinkler(a, b, false)
			if score >= threshold {
				pairs = append(pairs, SimilarPair{A: a, B: b, Score: score})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Score > pairs[j].Score })

	c.log.WithField("pairs", len(pairs)).Debug("Audited athlete names")

	return pairs
}

func sameID(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}
