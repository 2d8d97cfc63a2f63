package hosel

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// DefaultSummationRetries is the number of allocation attempts the default
// summation sampler makes before giving up.
const DefaultSummationRetries = 100

// settleSteps bounds the corrections settle applies to one attempt.
const settleSteps = 16

// SummationSampler draws values for a set of dimensions whose sum must lie in
// [lower, upper]. The returned configuration has one value per entry of dims,
// in order. ok is false when no feasible draw was produced.
type SummationSampler interface {
	Rand(dims []Dimension, lower, upper float64) (values Configuration, ok bool)
}

// budgetSampler is the default SummationSampler.
//
// How it works:
//  1. Rejects the request up front when [sum of mins, sum of maxes] cannot
//     reach [lower, upper]
//  2. Visits dimensions smallest range first, since those have the fewest
//     values to pick from
//  3. Each dimension draws below the remaining budget (upper minus what is
//     already allocated); the last one also has to reach lower
//  4. A dimension with no admissible value ends the attempt, and a new one
//     starts, up to maxRetries attempts
//  5. The values are re-added in dims order, which is how ConstraintSpec
//     adds them, and the last continuous value drawn absorbs any rounding
//     that pushed that sum out of [lower, upper]
type budgetSampler struct {
	mu         sync.Mutex
	rng        *rand.Rand
	maxRetries int
}

// Rand implements SummationSampler.
func (b *budgetSampler) Rand(dims []Dimension, lower, upper float64) (Configuration, bool) {
	if len(dims) == 0 || !summationFeasible(dims, lower, upper) {
		return nil, false
	}

	order := rangeOrder(dims)

	b.mu.Lock()
	defer b.mu.Unlock()

	for attempt := 0; attempt < b.maxRetries; attempt++ {
		if out, ok := b.allocate(dims, order, lower, upper); ok {
			return out, true
		}
	}

	return nil, false
}

// allocate performs a single attempt. Must be called with b.mu held.
func (b *budgetSampler) allocate(dims []Dimension, order []int, lower, upper float64) (Configuration, bool) {
	out := make(Configuration, len(dims))

	var allocated float64

	for pos, idx := range order {
		d := dims[idx]
		hi := upper - allocated

		lo := math.Inf(-1)
		if pos == len(order)-1 {
			lo = lower - allocated
		}

		v, ok := drawWithin(b.rng, d, lo, hi)
		if !ok {
			return nil, false
		}

		out[idx] = v
		allocated += v
	}

	if !settle(dims, order, out, lower, upper) {
		return nil, false
	}

	return out, true
}

// settle makes the sum of out, added in dims order, lie in [lower, upper].
// Only the last continuous dimension in allocation order is adjusted, and it
// must stay within its own bounds. Integer and discrete values are never
// touched.
func settle(dims []Dimension, order []int, out Configuration, lower, upper float64) bool {
	k := -1

	for i := len(order) - 1; i >= 0; i-- {
		if dims[order[i]].Type == Continuous {
			k = order[i]

			break
		}
	}

	for step := 0; step < settleSteps; step++ {
		var sum float64
		for _, v := range out {
			sum += v
		}

		target, dir := lower, math.Inf(1)

		switch {
		case sum < lower:
		case sum > upper:
			target, dir = upper, math.Inf(-1)
		default:
			return true
		}

		if k < 0 {
			return false
		}

		next := out[k] + (target - sum)
		if next == out[k] {
			next = math.Nextafter(out[k], dir)
		}

		if next < dims[k].Min || next > dims[k].Max {
			return false
		}

		out[k] = next
	}

	return false
}

// drawWithin draws a value of d that also lies in [lo, hi].
func drawWithin(r *rand.Rand, d Dimension, lo, hi float64) (float64, bool) {
	switch d.Type {
	case Discrete:
		admissible := make([]float64, 0, len(d.Choices))
		for _, c := range d.Choices {
			if lo <= c && c <= hi {
				admissible = append(admissible, c)
			}
		}

		if len(admissible) == 0 {
			return 0, false
		}

		return admissible[r.Intn(len(admissible))], true
	case Integer:
		a := math.Ceil(math.Max(d.Min, lo))
		z := math.Floor(math.Min(d.Max, hi))
		if a > z {
			return 0, false
		}

		return float64(randIntInclusive(r, int64(a), int64(z))), true
	default:
		a := math.Max(d.Min, lo)
		z := math.Min(d.Max, hi)
		if a > z {
			return 0, false
		}

		return a + r.Float64()*(z-a), true
	}
}

// summationFeasible reports whether [sum of lower bounds, sum of upper
// bounds] overlaps [lower, upper].
func summationFeasible(dims []Dimension, lower, upper float64) bool {
	var lo, hi float64
	for _, d := range dims {
		lo += d.Lower()
		hi += d.Upper()
	}

	return lo <= upper && lower <= hi
}

// rangeOrder returns dimension positions sorted by the number of values they
// can take, smallest first. Ties keep their original order.
func rangeOrder(dims []Dimension) []int {
	width := func(d Dimension) float64 {
		if d.Type == Discrete {
			return float64(len(d.Choices))
		}

		return math.Floor(d.Max - d.Min)
	}

	order := make([]int, len(dims))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return width(dims[order[a]]) < width(dims[order[b]])
	})

	return order
}

//////
// Factory.
//////

// NewSummationSampler returns the default SummationSampler.
//
// Parameters:
// - rng: Random source; nil seeds one from the current time
// - maxRetries: Allocation attempts per call; <= 0 uses DefaultSummationRetries
//
// The returned sampler is safe for concurrent use.
func NewSummationSampler(rng *rand.Rand, maxRetries int) SummationSampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if maxRetries <= 0 {
		maxRetries = DefaultSummationRetries
	}

	return &budgetSampler{rng: rng, maxRetries: maxRetries}
}
