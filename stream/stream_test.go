package stream_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/scoreboard"
	"github.com/sarchlab/ahblite/stream"
	"github.com/sarchlab/ahblite/timing"
)

func sameInt(uut, ref int) bool {
	return uut == ref
}

func counter() func() int {
	n := 0

	return func() int {
		n++
		return n
	}
}

var _ = Describe("Stream", func() {
	var (
		engine *timing.SerialEngine
		domain *timing.ClockDomain
		src    *rand.Rand
		sb     *scoreboard.InOrder[int]
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		domain = timing.NewClockDomain("Clk", engine).WithMaxCycles(2000)
		src = rand.New(rand.NewSource(7))
		sb = scoreboard.NewInOrder("Stream", sameInt)
	})

	It("should transfer every payload once and in order", func() {
		ch := stream.NewChannel[int]()
		driver := stream.NewDriver(ch, randomizer.NewBoolRandomizer(src),
			counter())
		reader := stream.NewReader(ch, randomizer.NewBoolRandomizer(src))

		driver.OnNew(sb.RefPush)
		reader.OnTransaction(sb.UUTPush)

		domain.Register(driver)
		domain.Register(reader)
		domain.Register(ch)
		domain.Start()
		Expect(engine.Run()).To(Succeed())

		refs, uuts := sb.Pending()
		Expect(refs).To(BeNumerically("<=", 1))
		Expect(uuts).To(BeZero())
		Expect(sb.Mismatches()).To(BeEmpty())
		Expect(sb.Matched()).To(BeNumerically(">", 100))
		Expect(reader.Received()).To(Equal(uint64(sb.Matched())))
		Expect(driver.Sent()).To(Equal(reader.Received() + uint64(refs)))
	})

	It("should hold the payload until it is accepted", func() {
		ch := stream.NewChannel[int]()
		driver := stream.NewDriver(ch, randomizer.Always(true), counter())

		driver.RisingEdge(0)
		ch.Commit()
		Expect(ch.Valid.Get()).To(BeTrue())
		Expect(ch.Payload.Get()).To(Equal(1))

		driver.RisingEdge(1)
		ch.Commit()
		Expect(ch.Payload.Get()).To(Equal(1))

		ch.Ready.Force(true)
		driver.RisingEdge(2)
		ch.Commit()
		Expect(ch.Payload.Get()).To(Equal(2))
		Expect(driver.Sent()).To(Equal(uint64(2)))
	})

	It("should see every payload of a flow while monitoring", func() {
		ch := stream.NewChannel[int]()
		driver := stream.NewFlowDriver(ch, randomizer.NewBoolRandomizer(src),
			counter())
		monitor := stream.NewFlowMonitor(ch)

		driver.OnNew(sb.RefPush)
		monitor.AddListener(sb.UUTPush)
		monitor.Start()

		domain.Register(driver)
		domain.Register(monitor)
		domain.Register(ch)
		domain.Start()
		Expect(engine.Run()).To(Succeed())

		refs, uuts := sb.Pending()
		Expect(refs).To(BeNumerically("<=", 1))
		Expect(uuts).To(BeZero())
		Expect(sb.Mismatches()).To(BeEmpty())
		Expect(sb.Matched()).To(BeNumerically(">", 100))
	})

	It("should ignore the flow when stopped", func() {
		ch := stream.NewChannel[int]()
		monitor := stream.NewFlowMonitor(ch)
		seen := 0
		monitor.AddListener(func(int) { seen++ })

		ch.Valid.Force(true)
		monitor.RisingEdge(0)
		Expect(seen).To(BeZero())

		monitor.Start()
		monitor.RisingEdge(1)
		monitor.Stop()
		monitor.RisingEdge(2)

		Expect(seen).To(Equal(1))
		Expect(monitor.Monitoring()).To(BeFalse())
	})
})
