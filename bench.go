package rcv

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bbengfort/x/stats"
)

// NewBenchmark creates and runs a tabulation benchmark: T synthetic elections
// of C candidates with N random ballots each are generated from the seed and
// tallied, measuring the latency of every tally. Each random ballot ranks a
// random number of candidates in a random order.
func NewBenchmark(C, N, T uint, seed int64) (*Benchmark, error) {
	bench := &Benchmark{candidates: C, ballots: N, trials: T, seed: seed}
	if err := bench.Run(); err != nil {
		return nil, err
	}
	return bench, nil
}

// Benchmark stores the results of a tabulation benchmark to be saved to disk.
type Benchmark struct {
	candidates uint              // the number of candidates per election
	ballots    uint              // the number of ballots per election
	trials     uint              // the number of elections generated and tallied
	seed       int64             // the random seed used to generate ballots
	elected    uint64            // the number of tallies that elected a winner
	started    time.Time         // the time the benchmark was started
	duration   time.Duration     // the total time spent tallying
	latency    *stats.Statistics // the latency of each tally in seconds
	rounds     *stats.Statistics // the rounds needed by each tally
}

// Run the benchmark, resetting any previous results. Ballot generation is
// not included in the measured duration.
func (b *Benchmark) Run() error {
	if b.candidates == 0 || b.trials == 0 {
		return errors.New("benchmark requires at least one candidate and one trial")
	}

	b.elected = 0
	b.duration = 0
	b.latency = new(stats.Statistics)
	b.rounds = new(stats.Statistics)

	rng := rand.New(rand.NewSource(b.seed))
	names := make([]string, b.candidates)
	for i := range names {
		names[i] = fmt.Sprintf("C%03d", i)
	}

	b.started = time.Now()
	for t := uint(0); t < b.trials; t++ {
		election, err := New(names...)
		if err != nil {
			return err
		}

		for n := uint(0); n < b.ballots; n++ {
			if err = election.Vote(randomBallot(rng, len(names))); err != nil {
				return err
			}
		}

		start := time.Now()
		result, err := election.Tally()
		if err != nil {
			return err
		}

		latency := time.Since(start)
		b.duration += latency
		b.latency.Update(latency.Seconds())
		b.rounds.Update(float64(len(result.Rounds)))

		if result.Elected() {
			b.elected++
		}
	}

	return nil
}

// randomBallot ranks a random non-empty prefix of a random permutation.
func randomBallot(rng *rand.Rand, n int) Indices {
	perm := rng.Perm(n)
	return Indices(perm[:rng.Intn(n)+1])
}

// Complete returns true if the benchmark has been run.
func (b *Benchmark) Complete() bool {
	return b.latency != nil && !b.started.IsZero()
}

// Throughput computes the number of tallies per second.
func (b *Benchmark) Throughput() float64 {
	if b.duration == 0 {
		return 0.0
	}

	return float64(b.trials) / b.duration.Seconds()
}

// CSV returns a results row delimited by commas as:
//
//	candidates,ballots,trials,elected,duration,throughput,version
//
// If header is specified then string contains two rows with the header first.
func (b *Benchmark) CSV(header bool) (string, error) {
	if !b.Complete() {
		return "", errors.New("benchmark has not been run yet")
	}

	row := fmt.Sprintf(
		"%d,%d,%d,%d,%s,%0.4f,%s",
		b.candidates, b.ballots, b.trials, b.elected, b.duration, b.Throughput(), Version(),
	)

	if header {
		return fmt.Sprintf("candidates,ballots,trials,elected,duration,throughput,version\n%s", row), nil
	}

	return row, nil
}

// JSON returns a results row as a json object, formatted with or without the
// number of spaces specified by indent. Use no indent for JSON lines format.
func (b *Benchmark) JSON(indent int) ([]byte, error) {
	if !b.Complete() {
		return nil, errors.New("benchmark has not been run yet")
	}

	data := b.serialize()

	if indent > 0 {
		indent := strings.Repeat(" ", indent)
		return json.MarshalIndent(data, "", indent)
	}

	return json.Marshal(data)
}

// serialize converts the benchmark into a map[string]interface{} -- useful
// for dumping the benchmark as JSON.
func (b *Benchmark) serialize() map[string]interface{} {
	data := make(map[string]interface{})

	data["candidates"] = b.candidates
	data["ballots"] = b.ballots
	data["trials"] = b.trials
	data["seed"] = b.seed
	data["elected"] = b.elected
	data["started"] = b.started.Format(time.RFC3339Nano)
	data["duration"] = b.duration.String()
	data["throughput"] = b.Throughput()
	data["latency"] = b.latency.Serialize()
	data["rounds"] = b.rounds.Serialize()
	data["version"] = Version()

	return data
}
