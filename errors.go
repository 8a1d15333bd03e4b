package rcv

import "errors"

// Ballot validation errors, returned by Election.Vote and ParseBallot.
var (
	ErrDuplicateRank     = errors.New("ballot ranks the same candidate or position twice")
	ErrOversizeBallot    = errors.New("ballot ranks more candidates than are on the slate")
	ErrGapInRanks        = errors.New("ballot ranks are not contiguous")
	ErrUnknownCandidate  = errors.New("ballot references a candidate not on the slate")
	ErrUnknownBallotType = errors.New("could not parse ballot")
)

// Slate construction errors.
var (
	ErrNoCandidates       = errors.New("an election requires at least one candidate")
	ErrDuplicateCandidate = errors.New("candidate names must be unique")
	ErrEmptyCandidate     = errors.New("candidate names must not be empty")
)

// Tally errors.
var (
	ErrNoMajority = errors.New("no candidate holds an absolute majority")
)

// Server, client, and event handling errors.
var (
	ErrNotListening     = errors.New("server is not listening for requests")
	ErrRetries          = errors.New("could not complete request in specified number of retries")
	ErrEventTypeError   = errors.New("captured event with wrong value type")
	ErrEventSourceError = errors.New("captured event with wrong source type")
	ErrUnknownFormat    = errors.New("unknown election file format")
)
