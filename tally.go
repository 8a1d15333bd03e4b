package rcv

import (
	"fmt"
	"sort"
)

// Counts maps each candidate still in contention to the number of ballots
// ranking it first in the current round.
type Counts map[string]int

// Total returns the number of ballots counted in the round.
func (c Counts) Total() (sum int) {
	for _, n := range c {
		sum += n
	}
	return sum
}

// HasWinner returns true if exactly one candidate attains the highest count
// and that count is an absolute majority, i.e. strictly greater than half of
// the total. A tie at the top is never a winner.
func (c Counts) HasWinner() bool {
	_, max, unique := c.leader()
	return unique && 2*max > c.Total()
}

// Winner returns the candidate with the unique absolute majority or
// ErrNoMajority if no such candidate exists.
func (c Counts) Winner() (string, error) {
	name, max, unique := c.leader()
	if !unique || 2*max <= c.Total() {
		return "", fmt.Errorf("%w: top count %d of %d", ErrNoMajority, max, c.Total())
	}
	return name, nil
}

// Lowest returns every candidate whose count equals the minimum count of the
// round, sorted by name.
func (c Counts) Lowest() []string {
	if len(c) == 0 {
		return nil
	}

	min := -1
	for _, n := range c {
		if min < 0 || n < min {
			min = n
		}
	}

	lowest := make([]string, 0, 1)
	for name, n := range c {
		if n == min {
			lowest = append(lowest, name)
		}
	}

	sort.Strings(lowest)
	return lowest
}

// leader returns a candidate with the maximum count, the count, and whether
// that candidate is the only one with it.
func (c Counts) leader() (name string, max int, unique bool) {
	max = -1
	for candidate, n := range c {
		switch {
		case n > max:
			name, max, unique = candidate, n, true
		case n == max:
			unique = false
		}
	}

	if max < 0 {
		return "", 0, false
	}
	return name, max, unique
}

//===========================================================================
// Runoff State
//===========================================================================

// runoff is the working state of a single tally: a private copy of the
// ballots, stripped as candidates are eliminated, and the active set.
type runoff struct {
	slate   *Slate
	ballots [][]int
	active  []bool
}

func newRunoff(slate *Slate, ballots [][]int) *runoff {
	r := &runoff{
		slate:   slate,
		ballots: make([][]int, len(ballots)),
		active:  make([]bool, slate.Len()),
	}

	for i, vote := range ballots {
		r.ballots[i] = make([]int, len(vote))
		copy(r.ballots[i], vote)
	}

	for id := range r.active {
		r.active[id] = true
	}
	return r
}

// count computes the first preference counts of every active candidate.
func (r *runoff) count() Counts {
	counts := make(Counts, len(r.active))
	for id, ok := range r.active {
		if ok {
			counts[r.slate.names[id]] = 0
		}
	}

	for _, vote := range r.ballots {
		if len(vote) == 0 || !r.active[vote[0]] {
			continue
		}
		counts[r.slate.names[vote[0]]]++
	}
	return counts
}

// eliminate strips the candidate from every ballot and the active set.
func (r *runoff) eliminate(id int) {
	for i, vote := range r.ballots {
		r.ballots[i] = removeCandidate(vote, id)
	}
	r.active[id] = false
}

// remaining returns the number of candidates still in contention.
func (r *runoff) remaining() (n int) {
	for _, ok := range r.active {
		if ok {
			n++
		}
	}
	return n
}

// exhausted returns the number of ballots with no remaining preferences.
func (r *runoff) exhausted() (n int) {
	for _, vote := range r.ballots {
		if len(vote) == 0 {
			n++
		}
	}
	return n
}

// removeCandidate deletes the identifier from the vote in place, keeping the
// order of the other preferences. A vote without the identifier is returned
// unchanged.
func removeCandidate(vote []int, id int) []int {
	for i, pref := range vote {
		if pref == id {
			return append(vote[:i], vote[i+1:]...)
		}
	}
	return vote
}
