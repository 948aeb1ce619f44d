package canonical

import (
	"regexp"

	"github.com/swimlytics/recordtrail/pkg/record"
)

// AliasRule maps team-name spellings to a canonical program name. Patterns
// are unanchored; the first matching rule wins, so order matters: "ARIZ"
// sits after "Arizona St|ASU" so that Arizona State rows never collapse
// into Arizona.
type AliasRule struct {
	Pattern   *regexp.Regexp
	Canonical string
}

// Rule compiles an alias rule. It panics on an invalid pattern; the table
// is static.
func Rule(pattern, canonical string) AliasRule {
	return AliasRule{Pattern: regexp.MustCompile(pattern), Canonical: canonical}
}

// DefaultAliasRules is the standard alias table, covering the spellings,
// abbreviations and scrape artifacts observed across the source archives.
var DefaultAliasRules = []AliasRule{
	// "Southern Cal" contains "Cal" and must resolve before the California
	// rule; same for Arizona State ahead of the bare Arizona spellings.
	Rule(`Southern Cal|Southern Cali|USC`, "Southern California"),
	Rule(`Cal|CAL|Berkeley`, "California"),
	Rule(`Arizona St|ASU`, "Arizona State"),
	Rule(`ARIZ|ArizonaL`, "Arizona"),
	Rule(`AUB`, "Auburn"),
	Rule(`NC State|NCS`, "NC State"),
	Rule(`MICH|Michigan`, "Michigan"),
	Rule(`FLOR`, "Florida"),
	Rule(`TENN`, "Tennessee"),
	Rule(`WISC`, "Wisconsin"),
	Rule(`IU|Indiana`, "Indiana"),
	Rule(`ND|Notre Dame`, "Notre Dame"),
	Rule(`NW|Northwestern`, "Northwestern"),
	Rule(`HARV`, "Harvard"),
	Rule(`Tex|TEX`, "Texas"),
	Rule(`Virginia|UVA`, "Virginia"),
	Rule(`Stanford|STAN`, "Stanford"),
	Rule(` Georgia|GeorgiaS|UGA`, "Georgia"),
	Rule(`Florida|Floid`, "Florida"),
}

// CanonicalTeam resolves one team name through the rule table. Names no
// rule matches pass through unchanged.
func CanonicalTeam(rules []AliasRule, name string) string {
	for _, r := range rules {
		if r.Pattern.MatchString(name) {
			return r.Canonical
		}
	}

	return name
}

func (c *Canonicalizer) applyTeamAliases(t record.Table) {
	renamed := 0

	for i := range t {
		canonical := CanonicalTeam(c.rules, t[i].Team)
		if canonical != t[i].Team {
			t[i].Team = canonical
			renamed++
		}
	}

	c.log.WithField("renamed", renamed).Debug("Applied team aliases")
}

// assignTeamIDs gives every canonical team one id. A team that already
// carries an id on any of its rows keeps it; otherwise the team gets the
// next ordinal, counted across all teams in first-appearance order.
func (c *Canonicalizer) assignTeamIDs(t record.Table) {
	ids := make(map[string]int)

	for i := range t {
		team := t[i].Team

		if _, ok := ids[team]; !ok {
			if existing := firstTeamID(t, team); existing != nil {
				ids[team] = *existing
			} else {
				ids[team] = len(ids) + 1
			}
		}

		id := ids[team]
		t[i].TeamID = &id
	}

	c.log.WithField("teams", len(ids)).Debug("Assigned team ids")
}

func firstTeamID(t record.Table, team string) *int {
	for _, r := range t {
		if r.Team == team && r.TeamID != nil {
			return r.TeamID
		}
	}

	return nil
}
