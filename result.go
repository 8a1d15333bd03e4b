package rcv

import (
	"fmt"
	"strings"
)

// Round records the counts of a single elimination round.
type Round struct {
	Number     int      // one-indexed round number
	Counts     Counts   // first preference counts of the active candidates
	Eliminated []string // candidates eliminated at the end of the round, in slate order
	Exhausted  int      // ballots with no remaining preferences when counted
}

// Result is the outcome of a tally along with the history of every round.
type Result struct {
	Outcome Outcome  // Elected or NoWinner once the tally is complete
	Winner  string   // the elected candidate, empty unless Outcome is Elected
	Rounds  []*Round // the rounds counted, in order
	Ballots int      // the number of ballots tallied
}

// Elected returns true if the tally produced a winner.
func (r *Result) Elected() bool {
	return r.Outcome == Elected
}

// String returns a one line summary of the result.
func (r *Result) String() string {
	switch r.Outcome {
	case Elected:
		return fmt.Sprintf("%s elected in round %d of %d ballots", r.Winner, len(r.Rounds), r.Ballots)
	case NoWinner:
		return fmt.Sprintf("no winner after %d rounds of %d ballots", len(r.Rounds), r.Ballots)
	default:
		return "tally is undecided"
	}
}

// Serialize converts the result into a map[string]interface{} composed only
// of lists, maps, strings and numbers; useful for dumping the result as JSON
// or as a protocol buffer struct.
func (r *Result) Serialize() map[string]interface{} {
	data := make(map[string]interface{})
	data["outcome"] = r.Outcome.String()
	data["winner"] = r.Winner
	data["ballots"] = r.Ballots

	rounds := make([]interface{}, 0, len(r.Rounds))
	for _, round := range r.Rounds {
		counts := make(map[string]interface{}, len(round.Counts))
		for name, n := range round.Counts {
			counts[name] = n
		}

		eliminated := make([]interface{}, 0, len(round.Eliminated))
		for _, name := range round.Eliminated {
			eliminated = append(eliminated, name)
		}

		rounds = append(rounds, map[string]interface{}{
			"round":      round.Number,
			"counts":     counts,
			"eliminated": eliminated,
			"exhausted":  round.Exhausted,
		})
	}
	data["rounds"] = rounds
	return data
}

// ParseResult reconstructs a result from the output of Serialize, after a
// round trip through JSON or a protocol buffer struct.
func ParseResult(data map[string]interface{}) (*Result, error) {
	result := &Result{}

	outcome, _ := data["outcome"].(string)
	switch outcome {
	case Elected.String():
		result.Outcome = Elected
	case NoWinner.String():
		result.Outcome = NoWinner
	case Undecided.String():
		result.Outcome = Undecided
	default:
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}

	result.Winner, _ = data["winner"].(string)
	result.Ballots, _ = toInt(data["ballots"])

	rounds, _ := data["rounds"].([]interface{})
	for _, item := range rounds {
		raw, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("could not parse round of type %T", item)
		}

		round := &Round{Counts: make(Counts)}
		round.Number, _ = toInt(raw["round"])
		round.Exhausted, _ = toInt(raw["exhausted"])

		counts, _ := raw["counts"].(map[string]interface{})
		for name, val := range counts {
			if round.Counts[name], ok = toInt(val); !ok {
				return nil, fmt.Errorf("could not parse count for %q in round %d", name, round.Number)
			}
		}

		eliminated, _ := raw["eliminated"].([]interface{})
		for _, val := range eliminated {
			name, ok := val.(string)
			if !ok {
				return nil, fmt.Errorf("could not parse eliminated candidate in round %d", round.Number)
			}
			round.Eliminated = append(round.Eliminated, name)
		}

		result.Rounds = append(result.Rounds, round)
	}

	return result, nil
}

// Table returns a plain text table of the counts of every round, one row per
// candidate in the order given and one column per round.
func (r *Result) Table(candidates []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s", "candidate"))
	for _, round := range r.Rounds {
		sb.WriteString(fmt.Sprintf(" %8s", fmt.Sprintf("round %d", round.Number)))
	}
	sb.WriteString("\n")

	for _, name := range candidates {
		sb.WriteString(fmt.Sprintf("%-20s", name))
		for _, round := range r.Rounds {
			if n, ok := round.Counts[name]; ok {
				sb.WriteString(fmt.Sprintf(" %8d", n))
			} else {
				sb.WriteString(fmt.Sprintf(" %8s", "-"))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(r.String())
	return sb.String()
}
