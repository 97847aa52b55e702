// Package sanitize implements the AST-level const-ref sanitizer the
// embedding layer must run before generate_init (spec §6): detecting
// hand-written references to constant holders so they get materialized by
// the init function even though no resolve() call ever interned them.
package sanitize

import (
	"regexp"
	"strconv"
)

// constRefPattern matches a const-holder-shaped player name: "$" followed
// by an optionally-signed decimal integer at a word boundary (spec §6:
// "^\$([-+]?\d+)\b").
var constRefPattern = regexp.MustCompile(`^\$([-+]?\d+)\b`)

// ScanConstRefs scans a command's literal player-name/objective tokens for
// any AstPlayerName shaped like a const holder paired with an AstObjective
// equal to constObjective, and calls register with the integer value for
// each match found (spec §6: "An auxiliary AST-level sanitizer MUST detect
// any AstPlayerName whose textual form matches ... paired with an
// AstObjective equal to const_objective and auto-register that integer
// into the const set; this ensures hand-written references to const
// holders are materialized").
//
// tokens is a flat (playerName, objective) pair list extracted from a
// command's AST by the caller — the actual command-parser AST walk is an
// external collaborator's concern (spec §1), not this core's; this
// function is the sanitizer contract itself, agnostic of which concrete
// parser produced the pairs.
func ScanConstRefs(tokens []PlayerObjective, constObjective string, register func(int64)) {
	for _, t := range tokens {
		if t.Objective != constObjective {
			continue
		}
		m := constRefPattern.FindStringSubmatch(t.PlayerName)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		register(v)
	}
}

// PlayerObjective is the (AstPlayerName, AstObjective) pair ScanConstRefs
// inspects, named for the two AST node kinds spec §6 calls out by name.
type PlayerObjective struct {
	PlayerName string
	Objective  string
}
