// Package randomizer provides the random decisions used to stall and throttle
// bus models.
package randomizer

// Source is the subset of *rand.Rand the randomizers need.
type Source interface {
	Float64() float64
}

// BoolRandomizer returns true with a probability that drifts over time. Every
// period calls it redraws the probability uniformly in [low, high], so a
// long run sees both bursty and sparse phases.
type BoolRandomizer struct {
	src     Source
	prob    float64
	low     float64
	high    float64
	period  int
	counter int
}

// NewBoolRandomizer creates a randomizer that starts at probability 0.5 and
// redraws it in [0.1, 0.9] every 100 calls.
func NewBoolRandomizer(src Source) *BoolRandomizer {
	return &BoolRandomizer{
		src:    src,
		prob:   0.5,
		low:    0.1,
		high:   0.9,
		period: 100,
	}
}

// WithRange sets the interval the probability is redrawn from.
func (r *BoolRandomizer) WithRange(low, high float64) *BoolRandomizer {
	if low < 0 || high > 1 || low > high {
		panic("randomizer: probability range must satisfy 0 <= low <= high <= 1")
	}

	r.low = low
	r.high = high

	return r
}

// WithPeriod sets the number of calls between two redraws.
func (r *BoolRandomizer) WithPeriod(period int) *BoolRandomizer {
	if period <= 0 {
		panic("randomizer: period must be positive")
	}

	r.period = period

	return r
}

// Probability returns the current probability of returning true.
func (r *BoolRandomizer) Probability() float64 {
	return r.prob
}

// Get draws the next value.
func (r *BoolRandomizer) Get() bool {
	r.counter++
	if r.counter == r.period {
		r.counter = 0
		r.prob = r.low + (r.high-r.low)*r.src.Float64()
	}

	return r.src.Float64() < r.prob
}

// Always answers a constant. Always(true) disables stalls.
type Always bool

// Get returns the constant.
func (a Always) Get() bool {
	return bool(a)
}

// Bool is what the bus models consume.
type Bool interface {
	Get() bool
}

var (
	_ Bool = (*BoolRandomizer)(nil)
	_ Bool = Always(true)
)
