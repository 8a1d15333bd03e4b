package rcv

// Terminal outcomes of the tally state machine.
const (
	Undecided Outcome = iota // undecided is the zero value, the tally has not finished
	Elected
	NoWinner
)

// Names of the outcomes for serialization
var outcomeStrings = [...]string{
	"undecided", "elected", "no winner",
}

// Outcome is an enumeration of the ways a tally can end.
type Outcome uint8

// String returns a human readable representation of the outcome.
func (o Outcome) String() string {
	if int(o) >= len(outcomeStrings) {
		return outcomeStrings[Undecided]
	}
	return outcomeStrings[o]
}
