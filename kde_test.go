package hosel

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelDensityScoreSinglePoint(t *testing.T) {
	kd := NewKernelDensity(1.0, 1, Configuration{0, 0})

	score, err := kd.Score([]Configuration{{0, 0}})
	require.NoError(t, err)

	// log N(0; 0, I) in two dimensions.
	assert.InDelta(t, -math.Log(2*math.Pi), score, 1e-12)

	far, err := kd.Score([]Configuration{{3, 4}})
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(2*math.Pi)-12.5, far, 1e-12)
}

func TestKernelDensityScoreIsFiniteFarAway(t *testing.T) {
	kd := NewKernelDensity(0.1, 1, Configuration{0}, Configuration{1})

	score, err := kd.Score([]Configuration{{1e4}})
	require.NoError(t, err)

	assert.False(t, math.IsInf(score, 0))
	assert.False(t, math.IsNaN(score))
}

func TestKernelDensityScoreAveragesPoints(t *testing.T) {
	kd := NewKernelDensity(1.0, 1, Configuration{0})

	a, _ := kd.Score([]Configuration{{0}})
	b, _ := kd.Score([]Configuration{{2}})
	both, err := kd.Score([]Configuration{{0}, {2}})
	require.NoError(t, err)

	assert.InDelta(t, (a+b)/2, both, 1e-12)
}

func TestKernelDensityPrefersObservedRegion(t *testing.T) {
	kd := NewKernelDensity(1.0, 1, Configuration{1, 1}, Configuration{2, 1})

	near, err := kd.Score([]Configuration{{1.5, 1}})
	require.NoError(t, err)

	far, err := kd.Score([]Configuration{{8, 8}})
	require.NoError(t, err)

	assert.Greater(t, near, far)
}

func TestKernelDensityErrors(t *testing.T) {
	kd := NewKernelDensity(1.0, 1)

	_, err := kd.Score([]Configuration{{1}})
	assert.ErrorIs(t, err, ErrNoObservations)

	_, err = kd.Sample(2)
	assert.ErrorIs(t, err, ErrNoObservations)

	_, err = NewKernelDensity(1.0, 1, Configuration{1}).Sample(-1)
	assert.ErrorIs(t, err, ErrNegativeSampleCount)

	kd.Update(Configuration{1, 2})

	_, err = kd.Score([]Configuration{{1}})
	assert.Error(t, err)

	_, err = kd.Score(nil)
	assert.Error(t, err)
}

func TestKernelDensitySample(t *testing.T) {
	kd := NewKernelDensity(0.01, 5, Configuration{10, -10})

	samples, err := kd.Sample(50)
	require.NoError(t, err)
	require.Len(t, samples, 50)

	for _, s := range samples {
		require.Len(t, s, 2)
		assert.InDelta(t, 10, s[0], 0.1)
		assert.InDelta(t, -10, s[1], 0.1)
	}
}

func TestKernelDensitySampleIsSeeded(t *testing.T) {
	obs := []Configuration{{1, 2}, {3, 4}, {5, 6}}

	a, err := NewKernelDensity(1, 99, obs...).Sample(10)
	require.NoError(t, err)

	b, err := NewKernelDensity(1, 99, obs...).Sample(10)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestKernelDensityUpdateCopies(t *testing.T) {
	kd := NewKernelDensity(1, 1)

	x := Configuration{1, 2}
	kd.Update(x)
	x[0] = 100

	assert.Equal(t, 1, kd.Len())
	assert.Equal(t, Configuration{1, 2}, kd.X[0])
}

func TestKernelDensitySigma(t *testing.T) {
	kd := NewKernelDensity(0, 1)
	assert.Equal(t, 1.0, kd.Sigma())

	kd.SetSigma(2.5)
	assert.Equal(t, 2.5, kd.Sigma())
}

func TestKernelDensityConcurrentUse(t *testing.T) {
	kd := NewKernelDensity(1, 1, Configuration{0, 0})

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			kd.Update(Configuration{float64(i), 1})
			_, _ = kd.Score([]Configuration{{1, 1}})
			_, _ = kd.Sample(3)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 9, kd.Len())
}
