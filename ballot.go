package rcv

import (
	"fmt"
	"math"
	"sort"
)

// Ballot is one voter's ranked preferences in any of the accepted input
// shapes. Normalize validates the ballot against the slate and converts it
// to the canonical form: candidate identifiers ordered most-preferred first.
// Value returns a representation of the ballot that ParseBallot accepts.
type Ballot interface {
	Normalize(slate *Slate) ([]int, error)
	Value() interface{}
}

// Indices is a ballot given as candidate identifiers (positions on the slate)
// ordered from most to least preferred.
type Indices []int

// Normalize checks the identifiers for duplicates, length, and range.
func (b Indices) Normalize(slate *Slate) ([]int, error) {
	seen := make(map[int]struct{}, len(b))
	for _, id := range b {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: candidate %d ranked more than once", ErrDuplicateRank, id)
		}
		seen[id] = struct{}{}
	}

	if len(b) > slate.Len() {
		return nil, fmt.Errorf("%w: %d rankings for %d candidates", ErrOversizeBallot, len(b), slate.Len())
	}

	vote := make([]int, 0, len(b))
	for _, id := range b {
		if !slate.Contains(id) {
			return nil, fmt.Errorf("%w: no candidate with id %d", ErrUnknownCandidate, id)
		}
		vote = append(vote, id)
	}
	return vote, nil
}

// Value returns the identifiers as a generic list.
func (b Indices) Value() interface{} {
	val := make([]interface{}, 0, len(b))
	for _, id := range b {
		val = append(val, id)
	}
	return val
}

// Names is a ballot given as candidate names ordered from most to least
// preferred.
type Names []string

// Normalize checks the names for duplicates and length then resolves them.
func (b Names) Normalize(slate *Slate) ([]int, error) {
	seen := make(map[string]struct{}, len(b))
	for _, name := range b {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q ranked more than once", ErrDuplicateRank, name)
		}
		seen[name] = struct{}{}
	}

	if len(b) > slate.Len() {
		return nil, fmt.Errorf("%w: %d rankings for %d candidates", ErrOversizeBallot, len(b), slate.Len())
	}

	return resolve(slate, b)
}

// Value returns the names as a generic list.
func (b Names) Value() interface{} {
	val := make([]interface{}, 0, len(b))
	for _, name := range b {
		val = append(val, name)
	}
	return val
}

// Ranks is a ballot given as a mapping of candidate name to rank, where lower
// ranks are preferred. Ranks must be distinct and contiguous but may start
// at any value, e.g. {"A": 1, "C": 2} ranks A first and C second.
type Ranks map[string]int

// Normalize checks the ranks for duplicates and gaps, orders the names by
// rank and resolves them.
func (b Ranks) Normalize(slate *Slate) ([]int, error) {
	names := make([]string, 0, len(b))
	ranks := make([]int, 0, len(b))
	holders := make(map[int]string, len(b))

	for name, rank := range b {
		if other, ok := holders[rank]; ok {
			return nil, fmt.Errorf("%w: %q and %q both ranked %d", ErrDuplicateRank, other, name, rank)
		}
		holders[rank] = name
		ranks = append(ranks, rank)
		names = append(names, name)
	}

	if hasGaps(ranks) {
		return nil, fmt.Errorf("%w: %v", ErrGapInRanks, ranks)
	}

	sort.Slice(names, func(i, j int) bool { return b[names[i]] < b[names[j]] })
	return resolve(slate, names)
}

// Value returns the rank mapping as a generic map.
func (b Ranks) Value() interface{} {
	val := make(map[string]interface{}, len(b))
	for name, rank := range b {
		val[name] = rank
	}
	return val
}

// ParseBallot converts a decoded value (from JSON, YAML, TOML, or a protobuf
// struct) into a Ballot. Lists of numbers are Indices, lists of strings are
// Names, and maps of names to numbers are Ranks.
func ParseBallot(v interface{}) (Ballot, error) {
	switch val := v.(type) {
	case Ballot:
		return val, nil
	case []int:
		return Indices(val), nil
	case []string:
		return Names(val), nil
	case map[string]int:
		return Ranks(val), nil
	case []interface{}:
		return parseList(val)
	case map[string]interface{}:
		ranks := make(Ranks, len(val))
		for name, item := range val {
			rank, ok := toInt(item)
			if !ok {
				return nil, fmt.Errorf("%w: rank of %q is %T not an integer", ErrUnknownBallotType, name, item)
			}
			ranks[name] = rank
		}
		return ranks, nil
	default:
		return nil, fmt.Errorf("%w: unhandled type %T", ErrUnknownBallotType, v)
	}
}

func parseList(items []interface{}) (Ballot, error) {
	if len(items) == 0 {
		return Indices{}, nil
	}

	if _, ok := items[0].(string); ok {
		names := make(Names, 0, len(items))
		for _, item := range items {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: mixed names and %T in ranked list", ErrUnknownBallotType, item)
			}
			names = append(names, name)
		}
		return names, nil
	}

	ids := make(Indices, 0, len(items))
	for _, item := range items {
		id, ok := toInt(item)
		if !ok {
			return nil, fmt.Errorf("%w: mixed indices and %T in ranked list", ErrUnknownBallotType, item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolve maps names to their slate identifiers, preserving order.
func resolve(slate *Slate, names []string) ([]int, error) {
	vote := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := slate.ID(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCandidate, name)
		}
		vote = append(vote, id)
	}
	return vote, nil
}

// hasGaps returns true unless the values, once sorted, form a single run of
// consecutive integers. The input slice is not modified.
func hasGaps(values []int) bool {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return true
		}
	}
	return false
}

// toInt converts the numeric types produced by the various decoders. Values
// that cannot be represented as an int are rejected rather than wrapped.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		// float64(math.MaxInt) rounds up to a power of two, so the upper
		// bound is exclusive; NaN and infinities fail the integral check.
		if n != math.Trunc(n) || n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
