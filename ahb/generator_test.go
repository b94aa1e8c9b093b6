package ahb_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ahblite/ahb"
)

func dataBeatsOf(unit []ahb.Transaction) []ahb.Transaction {
	var data []ahb.Transaction
	for _, t := range unit {
		if t.TransferType.CarriesData() {
			data = append(data, t)
		}
	}

	return data
}

func addressesOf(beats []ahb.Transaction) []uint64 {
	addrs := make([]uint64, 0, len(beats))
	for _, t := range beats {
		addrs = append(addrs, t.Address)
	}

	return addrs
}

var _ = Describe("Generator", func() {
	Context("with a scripted random source", func() {
		var (
			mockCtrl *gomock.Controller
			src      *MockRandSource
			gen      *ahb.Generator
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			src = NewMockRandSource(mockCtrl)
			gen = ahb.MakeGeneratorBuilder().
				WithAddressWidth(32).
				WithDataWidth(32).
				WithRandSource(src).
				Build()
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should return a null transaction on the idle branch", func() {
			src.EXPECT().Float64().Return(0.5)

			unit := gen.Next()

			Expect(unit).To(HaveLen(1))
			Expect(unit[0].IsNull()).To(BeTrue())
			Expect(unit[0]).To(Equal(ahb.Transaction{}))
		})

		It("should build a WRAP8 burst of words", func() {
			src.EXPECT().Float64().Return(0.9).Times(1)
			src.EXPECT().Intn(3).Return(2)
			src.EXPECT().Intn(8).Return(4)
			src.EXPECT().Float64().Return(0.3).Times(1)
			src.EXPECT().Intn(16).Return(5)
			src.EXPECT().Uint64().Return(uint64(0x12345678)).Times(1)
			src.EXPECT().Uint64().Return(uint64(0xAABBCCDD)).AnyTimes()
			src.EXPECT().Float64().Return(0.1).AnyTimes()

			unit := gen.Next()

			Expect(unit).To(HaveLen(8))
			Expect(addressesOf(unit)).To(Equal([]uint64{
				0x12345678, 0x1234567C, 0x12345660, 0x12345664,
				0x12345668, 0x1234566C, 0x12345670, 0x12345674,
			}))

			for i, t := range unit {
				Expect(t.Write).To(BeTrue())
				Expect(t.SizeLog2).To(Equal(uint8(2)))
				Expect(t.BurstCode).To(Equal(ahb.BurstWrap8))
				Expect(t.Protection).To(Equal(uint8(5)))
				Expect(t.WriteData).To(Equal([]byte{0xDD, 0xCC, 0xBB, 0xAA}))

				if i == 0 {
					Expect(t.TransferType).To(Equal(ahb.NonSeq))
				} else {
					Expect(t.TransferType).To(Equal(ahb.Seq))
				}
			}
		})

		It("should map the busy band onto filler counts", func() {
			src.EXPECT().Float64().Return(0.3).Times(1)
			src.EXPECT().Intn(16).Return(0)
			src.EXPECT().Uint64().Return(uint64(0x100)).Times(1)
			src.EXPECT().Uint64().Return(uint64(0)).AnyTimes()
			src.EXPECT().Float64().Return(0.99).Times(1)
			src.EXPECT().Float64().Return(0.86).Times(1)
			src.EXPECT().Float64().Return(0.5).Times(1)

			unit := gen.Burst(0, ahb.BurstIncr4)

			types := make([]ahb.TransferType, 0, len(unit))
			for _, t := range unit {
				types = append(types, t.TransferType)
			}

			Expect(types).To(Equal([]ahb.TransferType{
				ahb.NonSeq,
				ahb.Busy, ahb.Busy, ahb.Busy, ahb.Seq,
				ahb.Busy, ahb.Seq,
				ahb.Seq,
			}))
			Expect(addressesOf(unit)).To(Equal([]uint64{
				0x100, 0x101, 0x101, 0x101, 0x101, 0x102, 0x102, 0x103,
			}))
			Expect(ahb.CheckBurst(unit, 32)).To(Succeed())
		})
	})

	It("should produce only null transactions when always idle", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithIdleProbability(1).
			WithSeed(3).
			Build()

		for i := 0; i < 100; i++ {
			unit := gen.Next()
			Expect(unit).To(HaveLen(1))
			Expect(unit[0].IsNull()).To(BeTrue())
		}
	})

	It("should be idle about four times out of five by default", func() {
		gen := ahb.MakeGeneratorBuilder().WithSeed(11).Build()

		idle := 0
		for i := 0; i < 5000; i++ {
			unit := gen.Next()
			if len(unit) == 1 && unit[0].IsNull() {
				idle++
			}
		}

		Expect(idle).To(BeNumerically("~", 4000, 150))
	})

	DescribeTable("should only emit legal units",
		func(addressWidth, dataWidth int, seed int64) {
			gen := ahb.MakeGeneratorBuilder().
				WithAddressWidth(addressWidth).
				WithDataWidth(dataWidth).
				WithIdleProbability(0.2).
				WithSeed(seed).
				Build()

			for i := 0; i < 2000; i++ {
				unit := gen.Next()
				Expect(ahb.CheckBurst(unit, dataWidth)).To(Succeed(),
					"unit %d: %v", i, unit)
			}
		},
		Entry("32-bit bus", 32, 32, int64(1)),
		Entry("8-bit bus", 16, 8, int64(2)),
		Entry("64-bit bus, full address space", 64, 64, int64(3)),
		Entry("128-bit bus", 20, 128, int64(4)),
		Entry("1024-bit bus", 32, 1024, int64(5)),
		Entry("tiny address space", 4, 32, int64(6)),
	)

	It("should keep every burst inside one 1 KiB window", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithDataWidth(1024).
			WithIdleProbability(0).
			WithSeed(21).
			Build()

		for i := 0; i < 3000; i++ {
			data := dataBeatsOf(gen.Next())
			window := data[0].Address / ahb.BoundaryBytes

			for _, t := range data {
				last := t.Address + t.Bytes() - 1
				Expect(t.Address / ahb.BoundaryBytes).To(Equal(window))
				Expect(last / ahb.BoundaryBytes).To(Equal(window))
			}
		}
	})

	It("should never draw 16-beat bursts of 128-byte beats", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithDataWidth(1024).
			WithIdleProbability(0).
			WithSeed(8).
			Build()

		for i := 0; i < 3000; i++ {
			first := gen.Next()[0]
			if first.SizeLog2 == 7 {
				Expect(first.BurstCode).To(BeNumerically("<=", ahb.BurstIncr8))
			}
		}
	})

	It("should keep beats 1 byte wide on an 8-bit bus", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithDataWidth(8).
			WithIdleProbability(0).
			WithSeed(5).
			Build()

		for i := 0; i < 500; i++ {
			for _, t := range gen.Next() {
				Expect(t.SizeLog2).To(BeZero())
				Expect(t.WriteData).To(HaveLen(1))
			}
		}
	})

	It("should wrap word WRAP8 bursts inside a 32-byte window", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithAddressWidth(32).
			WithDataWidth(32).
			WithoutBusyBeats().
			WithSeed(17).
			Build()

		for i := 0; i < 200; i++ {
			unit := gen.Burst(2, ahb.BurstWrap8)
			Expect(unit).To(HaveLen(8))

			addrs := addressesOf(unit)
			base := addrs[0] - addrs[0]%32

			Expect(base % 32).To(BeZero())
			Expect(addrs).To(ConsistOf(
				base, base+4, base+8, base+12,
				base+16, base+20, base+24, base+28))

			for j := 1; j < len(addrs); j++ {
				next := addrs[j-1] + 4
				if next == base+32 {
					next = base
				}
				Expect(addrs[j]).To(Equal(next))
			}

			ninth := addrs[7] + 4
			if ninth == base+32 {
				ninth = base
			}
			Expect(ninth).To(Equal(addrs[0]))
		}
	})

	It("should increment fixed bursts without wrapping", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithDataWidth(64).
			WithIdleProbability(0).
			WithSeed(99).
			Build()

		seen := 0
		for seen < 300 {
			data := dataBeatsOf(gen.Next())
			burst := ahb.DecodeBurst(data[0].BurstCode)
			if burst.Kind != ahb.IncrFixed {
				continue
			}

			seen++
			Expect(data).To(HaveLen(burst.Beats))
			for j := 1; j < len(data); j++ {
				Expect(data[j].Address).To(
					Equal(data[j-1].Address + data[0].Bytes()))
			}
		}
	})

	It("should size unspecified bursts to the room left in the window", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithDataWidth(32).
			WithIdleProbability(0).
			WithSeed(123).
			Build()

		for i := 0; i < 300; i++ {
			data := dataBeatsOf(gen.Burst(uint8(i%3), ahb.BurstIncr))
			bytesPerBeat := data[0].Bytes()
			maxBeats := (ahb.BoundaryBytes -
				data[0].Address%ahb.BoundaryBytes) / bytesPerBeat

			Expect(len(data)).To(BeNumerically(">=", 1))
			Expect(uint64(len(data))).To(BeNumerically("<=", maxBeats))
		}
	})

	It("should not insert BUSY cycles when disabled", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithIdleProbability(0).
			WithoutBusyBeats().
			WithSeed(4).
			Build()

		for i := 0; i < 500; i++ {
			for _, t := range gen.Next() {
				Expect(t.TransferType).NotTo(Equal(ahb.Busy))
			}
		}
	})

	It("should bound the BUSY cycles before a beat", func() {
		gen := ahb.MakeGeneratorBuilder().
			WithIdleProbability(0).
			WithBusyProbability(1).
			WithMaxBusyBeats(2).
			WithSeed(4).
			Build()

		for i := 0; i < 500; i++ {
			run := 0
			for _, t := range gen.Next() {
				if t.TransferType == ahb.Busy {
					run++
					Expect(run).To(BeNumerically("<=", 2))
				} else {
					run = 0
				}
			}
		}
	})

	It("should repeat itself for the same seed", func() {
		b := ahb.MakeGeneratorBuilder().WithDataWidth(128).WithSeed(77)
		g1 := b.Build()
		g2 := b.Build()

		for i := 0; i < 200; i++ {
			Expect(g1.Next()).To(Equal(g2.Next()))
		}
	})

	DescribeTable("should reject invalid configurations",
		func(b ahb.GeneratorBuilder) {
			Expect(func() { b.Build() }).To(Panic())
		},
		Entry("zero address width",
			ahb.MakeGeneratorBuilder().WithAddressWidth(0)),
		Entry("address width above 64",
			ahb.MakeGeneratorBuilder().WithAddressWidth(65)),
		Entry("data width not a power of two",
			ahb.MakeGeneratorBuilder().WithDataWidth(24)),
		Entry("data width below a byte",
			ahb.MakeGeneratorBuilder().WithDataWidth(4)),
		Entry("data width above 1024",
			ahb.MakeGeneratorBuilder().WithDataWidth(2048)),
		Entry("idle probability above one",
			ahb.MakeGeneratorBuilder().WithIdleProbability(1.5)),
		Entry("negative busy beats",
			ahb.MakeGeneratorBuilder().WithMaxBusyBeats(-1)),
	)

	It("should reject bursts the bus cannot carry", func() {
		gen := ahb.MakeGeneratorBuilder().WithDataWidth(1024).Build()

		Expect(func() { gen.Burst(7, ahb.BurstWrap16) }).To(Panic())
		Expect(func() { gen.Burst(8, ahb.BurstSingle) }).To(Panic())
		Expect(func() { gen.Burst(7, ahb.BurstIncr8) }).NotTo(Panic())
	})
})
