package rcv_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/bbengfort/rcv"
)

var _ = Describe("Slate", func() {

	It("should identify candidates by their position", func() {
		slate, err := NewSlate("Quintus", "Gaius", "Fabius")
		Ω(err).ShouldNot(HaveOccurred())
		Ω(slate.Len()).Should(Equal(3))

		for i, name := range []string{"Quintus", "Gaius", "Fabius"} {
			id, ok := slate.ID(name)
			Ω(ok).Should(BeTrue())
			Ω(id).Should(Equal(i))

			actual, ok := slate.Name(i)
			Ω(ok).Should(BeTrue())
			Ω(actual).Should(Equal(name))
		}
	})

	It("should not find candidates that are not on the slate", func() {
		slate, err := NewSlate("Quintus", "Gaius", "Fabius")
		Ω(err).ShouldNot(HaveOccurred())

		_, ok := slate.ID("Lucifer")
		Ω(ok).Should(BeFalse())

		_, ok = slate.Name(3)
		Ω(ok).Should(BeFalse())

		_, ok = slate.Name(-1)
		Ω(ok).Should(BeFalse())
	})

	It("should not be modified through its names", func() {
		slate, err := NewSlate("Quintus", "Gaius", "Fabius")
		Ω(err).ShouldNot(HaveOccurred())

		names := slate.Names()
		names[0] = "Lucifer"
		Ω(slate.Names()).Should(Equal([]string{"Quintus", "Gaius", "Fabius"}))
	})

	It("should require candidates", func() {
		_, err := NewSlate()
		Ω(err).Should(MatchError(ErrNoCandidates))
	})

	It("should require unique candidate names", func() {
		_, err := NewSlate("Quintus", "Gaius", "Quintus")
		Ω(err).Should(MatchError(ErrDuplicateCandidate))
	})

	It("should require non-empty candidate names", func() {
		_, err := NewSlate("Quintus", "", "Fabius")
		Ω(err).Should(MatchError(ErrEmptyCandidate))
	})

})
