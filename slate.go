package rcv

import "fmt"

// NewSlate registers the candidates in the order given; the position of each
// name is its identifier for the lifetime of the slate.
func NewSlate(candidates ...string) (*Slate, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	slate := &Slate{
		names: make([]string, 0, len(candidates)),
		index: make(map[string]int, len(candidates)),
	}

	for id, name := range candidates {
		if name == "" {
			return nil, fmt.Errorf("%w: candidate %d", ErrEmptyCandidate, id)
		}

		if _, ok := slate.index[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCandidate, name)
		}

		slate.index[name] = id
		slate.names = append(slate.names, name)
	}

	return slate, nil
}

// Slate is the immutable, ordered set of candidates standing in an election.
type Slate struct {
	names []string       // candidate names by identifier
	index map[string]int // candidate identifiers by name
}

// Len returns the number of candidates on the slate.
func (s *Slate) Len() int {
	return len(s.names)
}

// ID returns the identifier of the named candidate.
func (s *Slate) ID(name string) (int, bool) {
	id, ok := s.index[name]
	return id, ok
}

// Name returns the name of the candidate with the specified identifier.
func (s *Slate) Name(id int) (string, bool) {
	if !s.Contains(id) {
		return "", false
	}
	return s.names[id], true
}

// Contains returns true if the identifier refers to a candidate on the slate.
func (s *Slate) Contains(id int) bool {
	return id >= 0 && id < len(s.names)
}

// Names returns a copy of the candidate names in slate order.
func (s *Slate) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}
