package rcv

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bbengfort/x/stats"
)

// Metrics tracks the measurable statistics of tabulation over time -- e.g.
// how many ballots were cast and how many rounds tallies took. Metrics is an
// observer: register Metrics.Observe with an election to collect them.
type Metrics struct {
	sync.RWMutex
	started    time.Time         // The time of the first observed event
	finished   time.Time         // The time of the last completed tally
	ballots    uint64            // Number of ballots cast
	tallies    uint64            // Number of tallies completed
	elected    uint64            // Number of tallies that elected a winner
	eliminated uint64            // Number of candidates eliminated
	winners    map[string]uint64 // The winners of each tally
	rounds     *stats.Statistics // Rounds needed per tally
	exhausted  *stats.Statistics // Exhausted ballots in the final round per tally
}

// NewMetrics creates the metrics data store
func NewMetrics() *Metrics {
	return &Metrics{
		winners:   make(map[string]uint64),
		rounds:    new(stats.Statistics),
		exhausted: new(stats.Statistics),
	}
}

// Observe implements Callback so that metrics can be registered with an
// election as an observer.
func (m *Metrics) Observe(e Event) error {
	m.Lock()
	defer m.Unlock()

	if m.started.IsZero() {
		m.started = time.Now()
	}

	switch e.Type() {
	case BallotEvent:
		m.ballots++
	case EliminateEvent:
		m.eliminated++
	case WinnerEvent, NoWinnerEvent:
		result, ok := e.Value().(*Result)
		if !ok {
			return ErrEventTypeError
		}
		m.complete(result)
	}
	return nil
}

// complete records a finished tally; the lock must be held.
func (m *Metrics) complete(result *Result) {
	m.tallies++
	m.finished = time.Now()

	if result.Elected() {
		m.elected++
		m.winners[result.Winner]++
	}

	m.rounds.Update(float64(len(result.Rounds)))
	if n := len(result.Rounds); n > 0 {
		m.exhausted.Update(float64(result.Rounds[n-1].Exhausted))
	}
}

// Ballots returns the number of ballots observed.
func (m *Metrics) Ballots() uint64 {
	m.RLock()
	defer m.RUnlock()
	return m.ballots
}

// Tallies returns the number of completed tallies observed.
func (m *Metrics) Tallies() uint64 {
	m.RLock()
	defer m.RUnlock()
	return m.tallies
}

// Winners returns a copy of the count of tallies won by each candidate.
func (m *Metrics) Winners() map[string]uint64 {
	m.RLock()
	defer m.RUnlock()

	winners := make(map[string]uint64, len(m.winners))
	for name, n := range m.winners {
		winners[name] = n
	}
	return winners
}

// Dump the metrics as a line of JSON appended to the file at path.
func (m *Metrics) Dump(path string, extra map[string]interface{}) (err error) {
	m.RLock()
	defer m.RUnlock()

	data := make(map[string]interface{})

	// Append extra information
	for key, val := range extra {
		data[key] = val
	}

	data["metric"] = "tabulation"
	data["version"] = PackageVersion
	data["started"] = m.started.Format(time.RFC3339Nano)
	data["finished"] = m.finished.Format(time.RFC3339Nano)
	data["ballots"] = m.ballots
	data["tallies"] = m.tallies
	data["elected"] = m.elected
	data["eliminated"] = m.eliminated
	data["winners"] = m.winners
	data["duration"] = m.duration().String()
	data["rounds"] = m.rounds.Serialize()
	data["exhausted"] = m.exhausted.Serialize()

	return appendJSON(path, data)
}

// String returns a summary of the tabulation metrics
func (m *Metrics) String() string {
	m.RLock()
	defer m.RUnlock()

	return fmt.Sprintf(
		"%d ballots, %d tallies (%d elected), %d eliminations in %s",
		m.ballots, m.tallies, m.elected, m.eliminated, m.duration(),
	)
}

// Duration computes the amount of time between the first event and the last
// completed tally.
func (m *Metrics) duration() time.Duration {
	if m.finished.IsZero() {
		return 0
	}
	return m.finished.Sub(m.started)
}

// appendJSON marshals the data and appends it as a single line to the file,
// creating the file if it does not exist.
func appendJSON(path string, val interface{}) (err error) {
	var data []byte
	if data, err = json.Marshal(val); err != nil {
		return err
	}

	var fobj *os.File
	if fobj, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
		return err
	}
	defer fobj.Close()

	if _, err = fobj.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
