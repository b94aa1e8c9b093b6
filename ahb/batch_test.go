package ahb_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ahblite/ahb"
)

var _ = Describe("Batch", func() {
	It("should match serial generation for every seed", func() {
		b := ahb.MakeGeneratorBuilder().WithDataWidth(64)
		seeds := []int64{1, 2, 3, 4}

		results, err := ahb.Batch(context.Background(), b, seeds, 300)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(seeds)))

		for i, seed := range seeds {
			Expect(results[i].Seed).To(Equal(seed))
			Expect(results[i].Units).To(HaveLen(300))

			gen := b.WithSeed(seed).Build()
			for _, unit := range results[i].Units {
				Expect(unit).To(Equal(gen.Next()))
			}
		}
	})

	It("should stop on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ahb.Batch(ctx, ahb.MakeGeneratorBuilder(), []int64{1, 2}, 10)
		Expect(err).To(MatchError(context.Canceled))
	})
})
