package rcv_test

import (
	"math"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/bbengfort/rcv"
)

var _ = Describe("Ballot", func() {

	var slate *Slate

	BeforeEach(func() {
		var err error
		slate, err = NewSlate("A", "B", "C", "D")
		Ω(err).ShouldNot(HaveOccurred())
	})

	It("should normalize every ballot shape to the same ranking", func() {
		expected := []int{2, 0, 3}
		ballots := []Ballot{
			Indices{2, 0, 3},
			Names{"C", "A", "D"},
			Ranks{"C": 0, "A": 1, "D": 2},
			Ranks{"C": 1, "A": 2, "D": 3},
			Ranks{"D": 9, "A": 8, "C": 7},
		}

		for _, ballot := range ballots {
			vote, err := ballot.Normalize(slate)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(vote).Should(Equal(expected))
		}
	})

	It("should normalize empty ballots", func() {
		for _, ballot := range []Ballot{Indices{}, Names{}, Ranks{}} {
			vote, err := ballot.Normalize(slate)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(vote).Should(BeEmpty())
		}
	})

	Context("given candidate indices", func() {

		It("should reject duplicate indices", func() {
			_, err := Indices{1, 2, 1}.Normalize(slate)
			Ω(err).Should(MatchError(ErrDuplicateRank))
		})

		It("should reject more indices than candidates", func() {
			_, err := Indices{0, 1, 2, 3, 4}.Normalize(slate)
			Ω(err).Should(MatchError(ErrOversizeBallot))
		})

		It("should reject indices that are not on the slate", func() {
			_, err := Indices{0, 7}.Normalize(slate)
			Ω(err).Should(MatchError(ErrUnknownCandidate))

			_, err = Indices{-1}.Normalize(slate)
			Ω(err).Should(MatchError(ErrUnknownCandidate))
		})

		It("should rank every candidate", func() {
			vote, err := Indices{3, 2, 1, 0}.Normalize(slate)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(vote).Should(Equal([]int{3, 2, 1, 0}))
		})

	})

	Context("given candidate names", func() {

		It("should reject duplicate names", func() {
			_, err := Names{"A", "B", "A"}.Normalize(slate)
			Ω(err).Should(MatchError(ErrDuplicateRank))
		})

		It("should reject more names than candidates", func() {
			_, err := Names{"A", "B", "C", "D", "E"}.Normalize(slate)
			Ω(err).Should(MatchError(ErrOversizeBallot))
		})

		It("should reject unknown names", func() {
			_, err := Names{"A", "Z"}.Normalize(slate)
			Ω(err).Should(MatchError(ErrUnknownCandidate))
		})

	})

	Context("given a rank mapping", func() {

		It("should reject duplicate ranks", func() {
			_, err := Ranks{"A": 1, "B": 1}.Normalize(slate)
			Ω(err).Should(MatchError(ErrDuplicateRank))
		})

		It("should reject gaps in the ranks", func() {
			_, err := Ranks{"A": 0, "B": 2}.Normalize(slate)
			Ω(err).Should(MatchError(ErrGapInRanks))
		})

		It("should reject unknown candidates", func() {
			_, err := Ranks{"A": 0, "Z": 1}.Normalize(slate)
			Ω(err).Should(MatchError(ErrUnknownCandidate))
		})

		It("should check duplicates before gaps before candidates", func() {
			_, err := Ranks{"A": 0, "B": 0, "Z": 5}.Normalize(slate)
			Ω(err).Should(MatchError(ErrDuplicateRank))

			_, err = Ranks{"Z": 0, "A": 2}.Normalize(slate)
			Ω(err).Should(MatchError(ErrGapInRanks))
		})

	})

	Describe("rank gaps", func() {

		It("should detect gaps in the ranks", func() {
			Ω(HasGaps([]int{0, 1, 3})).Should(BeTrue())
			Ω(HasGaps([]int{0, 2})).Should(BeTrue())
			Ω(HasGaps([]int{4, 1, 2})).Should(BeTrue())
		})

		It("should accept any contiguous run", func() {
			Ω(HasGaps([]int{0, 1, 2, 3})).Should(BeFalse())
			Ω(HasGaps([]int{3, 1, 2, 0})).Should(BeFalse())
			Ω(HasGaps([]int{1, 2})).Should(BeFalse())
			Ω(HasGaps([]int{5})).Should(BeFalse())
			Ω(HasGaps([]int{})).Should(BeFalse())
		})

		It("should not modify the ranks", func() {
			ranks := []int{3, 1, 2, 0}
			HasGaps(ranks)
			Ω(ranks).Should(Equal([]int{3, 1, 2, 0}))
		})

	})

	Describe("parsing", func() {

		It("should parse decoded lists of numbers as indices", func() {
			ballot, err := ParseBallot([]interface{}{float64(2), int64(1), 3})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(ballot).Should(Equal(Indices{2, 1, 3}))
		})

		It("should parse decoded lists of strings as names", func() {
			ballot, err := ParseBallot([]interface{}{"C", "A"})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(ballot).Should(Equal(Names{"C", "A"}))
		})

		It("should parse decoded maps as ranks", func() {
			ballot, err := ParseBallot(map[string]interface{}{"C": float64(1), "A": int64(2)})
			Ω(err).ShouldNot(HaveOccurred())
			Ω(ballot).Should(Equal(Ranks{"C": 1, "A": 2}))
		})

		It("should parse the value of every ballot shape", func() {
			ballots := []Ballot{
				Indices{2, 0, 3},
				Names{"C", "A", "D"},
				Ranks{"C": 1, "A": 2, "D": 3},
			}

			for _, ballot := range ballots {
				parsed, err := ParseBallot(ballot.Value())
				Ω(err).ShouldNot(HaveOccurred())
				Ω(parsed).Should(Equal(ballot))
			}
		})

		It("should not parse mixed lists or non-integer ranks", func() {
			_, err := ParseBallot([]interface{}{"A", 1})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot([]interface{}{1, "A"})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot([]interface{}{1.5})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot(map[string]interface{}{"A": "first"})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot("A")
			Ω(err).Should(MatchError(ErrUnknownBallotType))
		})

		It("should not parse ranks too large for an int", func() {
			_, err := ParseBallot(map[string]interface{}{"A": uint64(math.MaxUint64), "B": 0})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot(map[string]interface{}{"A": float64(1e19), "B": float64(-9.223372036854775808e18)})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot([]interface{}{math.Inf(1)})
			Ω(err).Should(MatchError(ErrUnknownBallotType))

			_, err = ParseBallot([]interface{}{math.NaN()})
			Ω(err).Should(MatchError(ErrUnknownBallotType))
		})

		It("should reject oversized ranks in election files", func() {
			_, err := ParseElection(strings.NewReader("candidates: [A, B]\nballots:\n  - {A: 18446744073709551615, B: 0}\n"), YAML)
			Ω(err).Should(MatchError(ErrUnknownBallotType))
			Ω(err.Error()).Should(HavePrefix("ballot 1:"))

			_, err = ParseElection(strings.NewReader(`{"candidates": ["A", "B"], "ballots": [{"A": 1e19, "B": -9.223372036854775808e18}]}`), JSON)
			Ω(err).Should(MatchError(ErrUnknownBallotType))
		})

	})

})
