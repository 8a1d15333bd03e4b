package rcv

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Election file formats
const (
	UnknownFormat Format = iota
	JSON
	YAML
	TOML
	CSV
)

// Names of the formats, also the canonical file extensions.
var formatStrings = [...]string{
	"unknown", "json", "yaml", "toml", "csv",
}

// Format is an enumeration of the election file encodings that can be loaded.
type Format uint8

// String returns the name of the format.
func (f Format) String() string {
	if int(f) >= len(formatStrings) {
		return formatStrings[UnknownFormat]
	}
	return formatStrings[f]
}

// ParseFormat returns the format by name; "yml" is an alias for "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "csv":
		return CSV, nil
	default:
		return UnknownFormat, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// electionFile is the structure of JSON, YAML, and TOML election files. Each
// ballot is a list of candidate indices, a list of candidate names, or a map
// of candidate names to ranks.
type electionFile struct {
	Name       string        `json:"name" yaml:"name" toml:"name"`
	Candidates []string      `json:"candidates" yaml:"candidates" toml:"candidates"`
	Ballots    []interface{} `json:"ballots" yaml:"ballots" toml:"ballots"`
}

// LoadElection opens the election file at path and casts every ballot in it.
// If the format is unknown it is inferred from the file extension.
func LoadElection(path string, format Format) (_ *Election, err error) {
	if format == UnknownFormat {
		if format, err = ParseFormat(filepath.Ext(path)); err != nil {
			return nil, err
		}
	}

	var f *os.File
	if f, err = os.Open(path); err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseElection(f, format)
}

// ParseElection reads an election from the reader in the specified format. A
// ballot that fails validation stops the parse with an error identifying it.
func ParseElection(r io.Reader, format Format) (*Election, error) {
	if format == CSV {
		return parseCSV(r)
	}

	data := new(electionFile)
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(data); err != nil {
			return nil, fmt.Errorf("could not decode json election: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(data); err != nil {
			return nil, fmt.Errorf("could not decode yaml election: %w", err)
		}
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(data); err != nil {
			return nil, fmt.Errorf("could not decode toml election: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	election, err := New(data.Candidates...)
	if err != nil {
		return nil, err
	}

	for i, item := range data.Ballots {
		ballot, err := ParseBallot(item)
		if err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i+1, err)
		}

		if err = election.Vote(ballot); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i+1, err)
		}
	}

	return election, nil
}

// parseCSV reads a tabular election: the header row names the candidates and
// every following row is a ballot giving the rank of each candidate in its
// column. Blank cells leave the candidate unranked.
func parseCSV(r io.Reader) (*Election, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCandidates
		}
		return nil, fmt.Errorf("could not read csv header: %w", err)
	}

	election, err := New(header...)
	if err != nil {
		return nil, err
	}

	for row := 2; ; row++ {
		var record []string
		if record, err = reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		ballot := make(Ranks, len(record))
		for col, cell := range record {
			if cell = strings.TrimSpace(cell); cell == "" {
				continue
			}

			rank, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w: rank of %q is %q", row, ErrUnknownBallotType, header[col], cell)
			}
			ballot[header[col]] = rank
		}

		if err = election.Vote(ballot); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}

	return election, nil
}
