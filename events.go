package rcv

import (
	"github.com/rs/zerolog/log"
)

// Event types represented in a tabulation
const (
	UnknownEvent EventType = iota
	ErrorEvent
	BallotEvent
	RoundEvent
	EliminateEvent
	WinnerEvent
	NoWinnerEvent
	VoteRequestEvent
	TallyRequestEvent
	StatusRequestEvent
)

// Names of event types
var eventTypeStrings = [...]string{
	"unknown", "error", "ballotCast", "roundCounted", "candidateEliminated",
	"winnerElected", "noWinner", "voteRequested", "tallyRequested",
	"statusRequested",
}

//===========================================================================
// Event Types
//===========================================================================

// EventType is an enumeration of the kind of events that can occur.
type EventType uint16

// String returns the name of event types
func (t EventType) String() string {
	if int(t) >= len(eventTypeStrings) {
		return eventTypeStrings[UnknownEvent]
	}
	return eventTypeStrings[t]
}

// Callback is a function that can receive events. Returning an error from
// an observer callback aborts the operation that dispatched the event.
type Callback func(Event) error

//===========================================================================
// Event Definition and Methods
//===========================================================================

// Event represents actions that occur during a tabulation. Observers can be
// registered with an Election to receive ballot, round, and outcome events.
type Event interface {
	Type() EventType
	Source() interface{}
	Value() interface{}
}

// event is an internal implementation of the Event interface.
type event struct {
	etype  EventType
	source interface{}
	value  interface{}
}

// Type returns the event type.
func (e *event) Type() EventType {
	return e.etype
}

// Source returns the entity that dispatched the event.
func (e *event) Source() interface{} {
	return e.source
}

// Value returns the current value associated with the event.
func (e *event) Value() interface{} {
	return e.value
}

//===========================================================================
// Logging Observer
//===========================================================================

// LogEvents is an observer that writes tabulation events to the global
// zerolog logger. Ballots are logged at trace level, rounds and eliminations
// at debug level and outcomes at info level.
func LogEvents(e Event) error {
	switch e.Type() {
	case BallotEvent:
		log.Trace().Interface("ballot", e.Value()).Msg("ballot cast")
	case RoundEvent:
		if round, ok := e.Value().(*Round); ok {
			log.Debug().
				Int("round", round.Number).
				Interface("counts", round.Counts).
				Int("exhausted", round.Exhausted).
				Msg("round counted")
		}
	case EliminateEvent:
		log.Debug().Interface("candidate", e.Value()).Msg("candidate eliminated")
	case WinnerEvent, NoWinnerEvent:
		if result, ok := e.Value().(*Result); ok {
			log.Info().
				Str("outcome", result.Outcome.String()).
				Str("winner", result.Winner).
				Int("rounds", len(result.Rounds)).
				Int("ballots", result.Ballots).
				Msg("tally complete")
		}
	}
	return nil
}
