package playback_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orrery/internal/playback"
)

var _ = Describe("Controller", func() {
	var c *playback.Controller

	BeforeEach(func() {
		c = playback.New()
	})

	It("starts stopped at zero", func() {
		Expect(c.Clock()).To(Equal(playback.Clock{}))
	})

	It("follows the start/tick/pause/reset scenario", func() {
		c.Start()
		for i := 0; i < 3; i++ {
			c.Tick(1.0, 10)
		}
		Expect(c.Elapsed()).To(Equal(30.0))

		c.Pause()
		c.Tick(1.0, 10)
		Expect(c.Elapsed()).To(Equal(30.0))

		c.Reset()
		Expect(c.Elapsed()).To(BeZero())
		Expect(c.Running()).To(BeFalse())
	})

	Describe("Start", func() {
		It("is idempotent", func() {
			c.Start()
			c.Tick(2, 1)
			before := c.Clock()
			c.Start()
			Expect(c.Clock()).To(Equal(before))
		})
	})

	Describe("Pause", func() {
		It("keeps elapsed time", func() {
			c.Start()
			c.Tick(4, 2)
			c.Pause()
			Expect(c.Elapsed()).To(Equal(8.0))
			Expect(c.Running()).To(BeFalse())
		})

		It("freezes time for every tick while paused", func() {
			c.Start()
			c.Tick(1, 1)
			c.Pause()
			for _, dt := range []float64{0, 0.5, 1, 100} {
				Expect(c.Tick(dt, 5).Elapsed).To(Equal(1.0))
			}
		})
	})

	Describe("Reset", func() {
		DescribeTable("always lands stopped at zero",
			func(ops func(*playback.Controller)) {
				ops(c)
				c.Reset()
				Expect(c.Clock()).To(Equal(playback.Clock{}))
			},
			Entry("fresh", func(*playback.Controller) {}),
			Entry("running", func(c *playback.Controller) { c.Start(); c.Tick(3, 2) }),
			Entry("paused", func(c *playback.Controller) { c.Start(); c.Tick(3, 2); c.Pause() }),
			Entry("reset twice", func(c *playback.Controller) { c.Start(); c.Tick(1, 1); c.Reset() }),
		)
	})

	Describe("Tick", func() {
		It("never goes backwards while running", func() {
			c.Start()
			prev := c.Elapsed()
			for _, dt := range []float64{0, 0.016, 1, 0, 2.5, -1, 0.3} {
				now := c.Tick(dt, 1.5).Elapsed
				Expect(now).To(BeNumerically(">=", prev))
				prev = now
			}
		})

		It("ignores negative deltas", func() {
			c.Start()
			Expect(c.Tick(-5, 1).Elapsed).To(BeZero())
		})

		It("clamps the speed factor", func() {
			c.Start()
			Expect(c.Tick(1, 1000).Elapsed).To(Equal(playback.MaxSpeedFactor))
			c.Reset()
			c.Start()
			Expect(c.Tick(1, 0).Elapsed).To(Equal(playback.MinSpeedFactor))
		})
	})

	Describe("Apply", func() {
		It("dispatches the three commands", func() {
			Expect(c.Apply(playback.CommandStart)).To(Succeed())
			Expect(c.Running()).To(BeTrue())
			c.Tick(1, 1)
			Expect(c.Apply(playback.CommandPause)).To(Succeed())
			Expect(c.Running()).To(BeFalse())
			Expect(c.Elapsed()).To(Equal(1.0))
			Expect(c.Apply(playback.CommandReset)).To(Succeed())
			Expect(c.Elapsed()).To(BeZero())
		})

		It("rejects unknown commands", func() {
			Expect(c.Apply("rewind")).To(MatchError(playback.ErrUnknownCommand))
		})
	})

	It("serialises concurrent ticks and reads", func() {
		c.Start()
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for j := 0; j < 250; j++ {
					c.Tick(1, 1)
					Expect(c.Elapsed()).To(BeNumerically(">", 0))
				}
			}()
		}
		wg.Wait()
		Expect(c.Elapsed()).To(Equal(1000.0))
	})
})

var _ = Describe("ClampSpeed", func() {
	DescribeTable("bounds the pace",
		func(in, want float64) {
			Expect(playback.ClampSpeed(in)).To(Equal(want))
		},
		Entry("inside", 2.5, 2.5),
		Entry("below", 0.0, playback.MinSpeedFactor),
		Entry("negative", -3.0, playback.MinSpeedFactor),
		Entry("above", 99.0, playback.MaxSpeedFactor),
		Entry("nan", math.NaN(), playback.DefaultSpeedFactor),
	)
})

var _ = Describe("ParseCommand", func() {
	It("accepts known names in any case", func() {
		cmd, err := playback.ParseCommand(" Start ")
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(playback.CommandStart))
	})

	It("rejects anything else", func() {
		_, err := playback.ParseCommand("stop")
		Expect(err).To(MatchError(playback.ErrUnknownCommand))
	})
})
