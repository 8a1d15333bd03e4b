package rcv

import "sort"

//===========================================================================
// Election
//===========================================================================

// New creates an election for the specified candidates. Candidate names must
// be unique and non-empty; the position of each name is its identifier when
// ballots are cast as Indices.
func New(candidates ...string) (*Election, error) {
	slate, err := NewSlate(candidates...)
	if err != nil {
		return nil, err
	}

	return &Election{
		slate:   slate,
		ballots: make([][]int, 0),
	}, nil
}

// Election objects keep track of the candidates standing and the normalized
// ballots cast for them, and run instant-runoff tallies over those ballots.
//
// NOTE: an election is not thread-safe; callers must serialize access to it.
type Election struct {
	slate     *Slate     // the candidates standing, fixed at creation
	ballots   [][]int    // normalized ballots, most-preferred candidate first
	observers []Callback // notified of ballot, round, and outcome events
}

// Slate returns the candidates standing in the election.
func (e *Election) Slate() *Slate {
	return e.slate
}

// Candidates returns the candidate names in slate order.
func (e *Election) Candidates() []string {
	return e.slate.Names()
}

// Len returns the number of ballots cast.
func (e *Election) Len() int {
	return len(e.ballots)
}

// Ballots returns a copy of the normalized ballots cast.
func (e *Election) Ballots() [][]int {
	ballots := make([][]int, len(e.ballots))
	for i, vote := range e.ballots {
		ballots[i] = make([]int, len(vote))
		copy(ballots[i], vote)
	}
	return ballots
}

// Observe registers callbacks that are notified of election events.
func (e *Election) Observe(callbacks ...Callback) {
	e.observers = append(e.observers, callbacks...)
}

// Vote normalizes the ballot and records it. An invalid ballot is rejected
// in its entirety with one of ErrDuplicateRank, ErrOversizeBallot,
// ErrGapInRanks, or ErrUnknownCandidate. Observers are notified before the
// ballot is recorded; if one returns an error the ballot is not recorded.
func (e *Election) Vote(ballot Ballot) error {
	vote, err := ballot.Normalize(e.slate)
	if err != nil {
		return err
	}

	if err = e.dispatch(BallotEvent, vote); err != nil {
		return err
	}

	e.ballots = append(e.ballots, vote)
	return nil
}

// Tally runs the instant-runoff count. Each round the first preferences of
// the candidates still in contention are counted; if one candidate holds an
// absolute majority it is elected, otherwise every candidate tied for the
// lowest count is eliminated and their ballots pass to the next preference.
// The tally runs for at most as many rounds as there are candidates and ends
// with NoWinner if no majority emerges.
//
// Tally works on a copy of the ballots so the election is unchanged and
// repeated tallies return the same result. An error is only returned if an
// observer aborts the tally.
func (e *Election) Tally() (*Result, error) {
	run := newRunoff(e.slate, e.ballots)
	result := &Result{Ballots: len(e.ballots)}

	for n := 1; n <= e.slate.Len() && run.remaining() > 0; n++ {
		round := &Round{Number: n, Counts: run.count(), Exhausted: run.exhausted()}
		result.Rounds = append(result.Rounds, round)

		if err := e.dispatch(RoundEvent, round); err != nil {
			return nil, err
		}

		if winner, err := round.Counts.Winner(); err == nil {
			result.Outcome = Elected
			result.Winner = winner
			if err := e.dispatch(WinnerEvent, result); err != nil {
				return nil, err
			}
			return result, nil
		}

		round.Eliminated = e.inSlateOrder(round.Counts.Lowest())
		for _, name := range round.Eliminated {
			id, _ := e.slate.ID(name)
			run.eliminate(id)

			if err := e.dispatch(EliminateEvent, name); err != nil {
				return nil, err
			}
		}
	}

	result.Outcome = NoWinner
	if err := e.dispatch(NoWinnerEvent, result); err != nil {
		return nil, err
	}
	return result, nil
}

// dispatch an event to every observer, stopping at the first error.
func (e *Election) dispatch(etype EventType, value interface{}) error {
	if len(e.observers) == 0 {
		return nil
	}

	evt := &event{etype: etype, source: e, value: value}
	for _, observer := range e.observers {
		if err := observer(evt); err != nil {
			return err
		}
	}
	return nil
}

// inSlateOrder sorts candidate names by their slate identifier.
func (e *Election) inSlateOrder(names []string) []string {
	sort.SliceStable(names, func(i, j int) bool {
		a, _ := e.slate.ID(names[i])
		b, _ := e.slate.ID(names[j])
		return a < b
	})
	return names
}
