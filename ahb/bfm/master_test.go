package bfm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/ahb/bfm"
	"github.com/sarchlab/ahblite/timing"
)

var _ = Describe("Master", func() {
	var (
		mockCtrl *gomock.Controller
		bus      *bfm.Signals
		source   *MockTransactionSource
		master   *bfm.Master
		issued   []ahb.Transaction
		unit     []ahb.Transaction
	)

	edge := func(cycle timing.VTimeInCycle) {
		master.RisingEdge(cycle)
		bus.Commit()
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		bus = bfm.NewSignals(32)
		source = NewMockTransactionSource(mockCtrl)
		master = bfm.NewMaster("Master", bus, source)

		issued = nil
		master.AcceptHook(timing.HookFunc(func(ctx timing.HookCtx) {
			issued = append(issued, ctx.Item.(ahb.Transaction))
		}))

		first := transfer(ahb.NonSeq, true, 0x10, 2)
		first.WriteData = []byte{1, 2, 3, 4}
		second := transfer(ahb.Seq, true, 0x14, 2)
		second.WriteData = []byte{5, 6, 7, 8}
		unit = []ahb.Transaction{first, second}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should drive write data one accepted cycle after the address", func() {
		gomock.InOrder(
			source.EXPECT().Next().Return(unit),
			source.EXPECT().Next().Return([]ahb.Transaction{{}}),
		)

		edge(0)
		Expect(bus.HADDR.Get()).To(Equal(uint64(0x10)))
		Expect(bus.HTRANS.Get()).To(Equal(ahb.NonSeq))
		Expect(bus.HWDATA.Get()).To(Equal([]byte{0, 0, 0, 0}))

		edge(1)
		Expect(bus.HADDR.Get()).To(Equal(uint64(0x14)))
		Expect(bus.HTRANS.Get()).To(Equal(ahb.Seq))
		Expect(bus.HWDATA.Get()).To(Equal([]byte{1, 2, 3, 4}))

		bus.HREADY.Force(false)
		edge(2)
		Expect(bus.HADDR.Get()).To(Equal(uint64(0x14)))
		Expect(bus.HWDATA.Get()).To(Equal([]byte{1, 2, 3, 4}))

		bus.HREADY.Force(true)
		edge(3)
		Expect(bus.HTRANS.Get()).To(Equal(ahb.Idle))
		Expect(bus.HADDR.Get()).To(Equal(uint64(0)))
		Expect(bus.HWDATA.Get()).To(Equal([]byte{5, 6, 7, 8}))

		Expect(master.Issued()).To(Equal(uint64(3)))
		Expect(issued).To(HaveLen(3))
		Expect(issued[1]).To(Equal(unit[1]))
	})

	It("should finish the current unit when draining", func() {
		source.EXPECT().Next().Return(unit).Times(1)

		edge(0)
		master.Drain()
		Expect(master.Quiet()).To(BeFalse())

		edge(1)
		Expect(bus.HTRANS.Get()).To(Equal(ahb.Seq))

		edge(2)
		Expect(bus.HTRANS.Get()).To(Equal(ahb.Idle))
		Expect(master.Quiet()).To(BeFalse())

		edge(3)
		Expect(master.Quiet()).To(BeTrue())
	})

	It("should idle the bus on reset", func() {
		source.EXPECT().Next().Return(unit)

		edge(0)
		master.Reset()
		bus.Commit()

		Expect(bus.AddressPhase().IsNull()).To(BeTrue())
		Expect(bus.HWDATA.Get()).To(Equal([]byte{0, 0, 0, 0}))
	})
})
