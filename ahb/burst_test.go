package ahb_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ahblite/ahb"
)

var _ = Describe("Burst", func() {
	DescribeTable("decoding",
		func(code uint8, kind ahb.BurstKind, beats int, name string) {
			b := ahb.DecodeBurst(code)

			Expect(b.Kind).To(Equal(kind))
			Expect(b.Beats).To(Equal(beats))
			Expect(b.String()).To(Equal(name))
			Expect(b.Code()).To(Equal(code))
		},
		Entry("SINGLE", ahb.BurstSingle, ahb.Single, 1, "SINGLE"),
		Entry("INCR", ahb.BurstIncr, ahb.IncrUnspecified, 0, "INCR"),
		Entry("WRAP4", ahb.BurstWrap4, ahb.Wrapping, 4, "WRAP4"),
		Entry("INCR4", ahb.BurstIncr4, ahb.IncrFixed, 4, "INCR4"),
		Entry("WRAP8", ahb.BurstWrap8, ahb.Wrapping, 8, "WRAP8"),
		Entry("INCR8", ahb.BurstIncr8, ahb.IncrFixed, 8, "INCR8"),
		Entry("WRAP16", ahb.BurstWrap16, ahb.Wrapping, 16, "WRAP16"),
		Entry("INCR16", ahb.BurstIncr16, ahb.IncrFixed, 16, "INCR16"),
	)

	It("should only look at the low three bits", func() {
		Expect(ahb.DecodeBurst(0x0D)).To(Equal(ahb.DecodeBurst(ahb.BurstIncr8)))
	})

	It("should panic on bursts with no code", func() {
		Expect(func() {
			ahb.Burst{Kind: ahb.Wrapping, Beats: 3}.Code()
		}).To(Panic())
	})

	DescribeTable("the largest transfer size",
		func(dataWidth int, sizeLog2 uint8) {
			Expect(ahb.MaxSizeLog2(dataWidth)).To(Equal(sizeLog2))
		},
		Entry("8 bits", 8, uint8(0)),
		Entry("32 bits", 32, uint8(2)),
		Entry("64 bits", 64, uint8(3)),
		Entry("1024 bits", 1024, uint8(7)),
	)

	It("should describe transactions", func() {
		t := ahb.Transaction{
			Address:      0x40,
			Write:        true,
			SizeLog2:     2,
			BurstCode:    ahb.BurstIncr4,
			Protection:   3,
			TransferType: ahb.NonSeq,
			WriteData:    []byte{0x01, 0x02, 0x03, 0x04},
		}

		Expect(t.String()).To(Equal(
			"NONSEQ W 0x40 size=4 burst=INCR4 prot=3 data=01020304"))
		Expect(ahb.TransferType(9).String()).To(Equal("HTRANS(9)"))
	})

	It("should treat zero write data as null", func() {
		Expect(ahb.Transaction{WriteData: []byte{0, 0}}.IsNull()).To(BeTrue())
		Expect(ahb.Transaction{WriteData: []byte{0, 1}}.IsNull()).To(BeFalse())
		Expect(ahb.Transaction{Protection: 1}.IsNull()).To(BeFalse())
	})
})
