package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/scoreboard"
)

func sameInt(uut, ref int) bool {
	return uut == ref
}

var _ = Describe("InOrder", func() {
	var sb *scoreboard.InOrder[int]

	BeforeEach(func() {
		sb = scoreboard.NewInOrder("sb", sameInt)
	})

	It("should match items in arrival order", func() {
		sb.RefPush(1)
		sb.RefPush(2)
		sb.UUTPush(1)
		sb.UUTPush(2)

		Expect(sb.Matched()).To(Equal(2))
		Expect(sb.Check()).To(Succeed())
	})

	It("should report mismatches", func() {
		sb.UUTPush(3)
		sb.RefPush(4)

		err := sb.Check()
		Expect(errors.Cause(err)).To(Equal(scoreboard.ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("uut 3, ref 4"))
	})

	It("should report leftovers", func() {
		sb.RefPush(1)
		sb.RefPush(2)
		sb.UUTPush(1)

		refs, uuts := sb.Pending()
		Expect(refs).To(Equal(1))
		Expect(uuts).To(Equal(0))

		err := sb.Check()
		Expect(errors.Cause(err)).To(Equal(scoreboard.ErrNotEmpty))
		Expect(err.Error()).To(ContainSubstring("REF:\n2"))
	})

	It("should notify listeners", func() {
		var results []bool
		sb.AddListener(func(_, _ int, equal bool) {
			results = append(results, equal)
		})

		sb.RefPush(1)
		sb.UUTPush(1)
		sb.RefPush(2)
		sb.UUTPush(5)

		Expect(results).To(Equal([]bool{true, false}))
	})
})

var _ = Describe("OutOfOrder", func() {
	var sb *scoreboard.OutOfOrder[string, int]

	BeforeEach(func() {
		sb = scoreboard.NewOutOfOrder[string, int]("ooo",
			func(uut, ref string) bool { return uut == ref })
	})

	It("should match items across IDs in any order", func() {
		sb.RefPush("a0", 0)
		sb.RefPush("b0", 1)
		sb.RefPush("a1", 0)

		sb.UUTPush("b0", 1)
		sb.UUTPush("a0", 0)
		sb.UUTPush("a1", 0)

		Expect(sb.Matched()).To(Equal(3))
		Expect(sb.PendingIDs()).To(Equal(0))
		Expect(sb.Check()).To(Succeed())
	})

	It("should keep order within one ID", func() {
		sb.RefPush("a0", 0)
		sb.RefPush("a1", 0)
		sb.UUTPush("a1", 0)

		Expect(sb.Mismatches()).To(HaveLen(1))
	})

	It("should report leftovers per ID", func() {
		sb.RefPush("x", 7)
		sb.UUTPush("y", 8)

		Expect(sb.PendingIDs()).To(Equal(2))

		err := sb.Check()
		Expect(errors.Cause(err)).To(Equal(scoreboard.ErrNotEmpty))
		Expect(err.Error()).To(ContainSubstring("REF[7]:\nx"))
		Expect(err.Error()).To(ContainSubstring("UUT[8]:\ny"))
	})

	It("should tell listeners about every comparison", func() {
		count := 0
		sb.AddListener(func(uut, ref string, equal bool) {
			count++
			Expect(equal).To(Equal(uut == ref))
		})

		sb.RefPush("p", 1)
		sb.UUTPush("p", 1)
		sb.RefPush("q", 2)
		sb.UUTPush("r", 2)

		Expect(count).To(Equal(2))
	})
})
