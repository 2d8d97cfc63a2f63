package hosel

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

//////
// Const, vars, types.
//////

// KernelDensity is a thread-safe isotropic Gaussian kernel density estimate
// over observed configurations. It implements DensityModel, so a pair of
// them (one fed with good outcomes, one with bad outcomes) can drive the
// Selector.
//
// Fields:
// - mu: RWMutex for thread-safe access to all fields
// - X: Observed configurations
// - sigma: Kernel bandwidth
// - rng: Random source used by Sample
//
// Memory usage:
// - Grows linearly with number of observations
// - Each observation stores a copy of its values.
type KernelDensity struct {
	// mu protects access to all fields
	mu sync.RWMutex

	// X stores the observed configurations. Inner slices share one length.
	X []Configuration

	// sigma is the kernel bandwidth
	// Larger values = smoother density
	// Smaller values = more local influence
	sigma float64

	// rng drives Sample; guarded by mu (write lock)
	rng *rand.Rand
}

//////
// Methods.
//////

// logKernel returns the log of the unnormalised Gaussian kernel between x1
// and x2:
//
//	log k(x1, x2) = -sum((x1 - x2)^2) / (2 * sigma^2)
//
// Must be called with kd.mu held.
func (kd *KernelDensity) logKernel(x1, x2 Configuration) float64 {
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return -sum / (2 * kd.sigma * kd.sigma)
}

// logDensity returns log p(x) using log-sum-exp to stay finite far from the
// observations. Must be called with kd.mu held.
func (kd *KernelDensity) logDensity(x Configuration) float64 {
	maxK := math.Inf(-1)
	ks := make([]float64, len(kd.X))

	for i, xi := range kd.X {
		ks[i] = kd.logKernel(x, xi)
		maxK = math.Max(maxK, ks[i])
	}

	var sum float64
	for _, k := range ks {
		sum += math.Exp(k - maxK)
	}

	dim := float64(len(x))
	norm := -0.5 * dim * math.Log(2*math.Pi*kd.sigma*kd.sigma)

	return maxK + math.Log(sum) - math.Log(float64(len(kd.X))) + norm
}

// Score returns the mean log-density of points under the model.
//
// Returns:
// - ErrNoObservations when the model is empty
// - An error when a point's length differs from the observations'
//
// Thread safety:
// - Uses a read lock; many Score calls can run in parallel.
func (kd *KernelDensity) Score(points []Configuration) (float64, error) {
	kd.mu.RLock()
	defer kd.mu.RUnlock()

	if len(kd.X) == 0 {
		return 0, ErrNoObservations
	}

	if len(points) == 0 {
		return 0, fmt.Errorf("kernel density: no points to score")
	}

	var total float64

	for _, p := range points {
		if len(p) != len(kd.X[0]) {
			return 0, fmt.Errorf("kernel density: point has %d values, model has %d", len(p), len(kd.X[0]))
		}

		total += kd.logDensity(p)
	}

	return total / float64(len(points)), nil
}

// Sample draws n configurations: each picks a stored observation uniformly
// and perturbs every value with N(0, sigma^2) noise. Samples are not clamped
// to any bounds.
func (kd *KernelDensity) Sample(n int) ([]Configuration, error) {
	kd.mu.Lock()
	defer kd.mu.Unlock()

	if n < 0 {
		return nil, fmt.Errorf("kernel density: %w: %d", ErrNegativeSampleCount, n)
	}

	if len(kd.X) == 0 {
		return nil, ErrNoObservations
	}

	out := make([]Configuration, n)
	for i := range out {
		base := kd.X[kd.rng.Intn(len(kd.X))]

		c := make(Configuration, len(base))
		for j, v := range base {
			c[j] = v + kd.sigma*kd.rng.NormFloat64()
		}

		out[i] = c
	}

	return out, nil
}

// Update adds an observed configuration to the model.
//
// Important notes:
// - Creates a copy of x to prevent external modifications
// - Memory usage grows with each update
func (kd *KernelDensity) Update(x Configuration) {
	kd.mu.Lock()
	defer kd.mu.Unlock()

	kd.X = append(kd.X, x.Clone())
}

// Len returns the number of observations.
func (kd *KernelDensity) Len() int {
	kd.mu.RLock()
	defer kd.mu.RUnlock()

	return len(kd.X)
}

// SetSigma updates the kernel bandwidth. No validation of sigma value
// (caller's responsibility); it must be positive.
func (kd *KernelDensity) SetSigma(sigma float64) {
	kd.mu.Lock()
	defer kd.mu.Unlock()
	kd.sigma = sigma
}

// Sigma returns the current kernel bandwidth.
func (kd *KernelDensity) Sigma() float64 {
	kd.mu.RLock()
	defer kd.mu.RUnlock()

	return kd.sigma
}

//////
// Factory.
//////

// NewKernelDensity creates an empty model with bandwidth sigma (<= 0 means
// 1.0) and a random source seeded with seed (0 means the current time).
//
// Best practices:
// - Scale sigma to the dimension ranges; one bandwidth serves all dimensions
// - Don't share instances between independent tuning jobs.
func NewKernelDensity(sigma float64, seed int64, observations ...Configuration) *KernelDensity {
	if sigma <= 0 {
		sigma = 1.0
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	kd := &KernelDensity{
		sigma: sigma,
		rng:   rand.New(rand.NewSource(seed)),
	}

	for _, o := range observations {
		kd.X = append(kd.X, o.Clone())
	}

	return kd
}
