package hosel

import (
	"context"
	"errors"
	"sync"
)

// fakeModel is a DensityModel whose score is a function of the point and
// whose samples are fixed.
type fakeModel struct {
	score   func(p Configuration) float64
	samples []Configuration
	err     error

	mu      sync.Mutex
	scored  int
	sampled []int
}

func (f *fakeModel) Score(points []Configuration) (float64, error) {
	f.mu.Lock()
	f.scored++
	f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}

	return f.score(points[0]), nil
}

func (f *fakeModel) Sample(n int) ([]Configuration, error) {
	f.mu.Lock()
	f.sampled = append(f.sampled, n)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	out := make([]Configuration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.samples[i%len(f.samples)].Clone())
	}

	return out, nil
}

func constModel(v float64) *fakeModel {
	return &fakeModel{score: func(Configuration) float64 { return v }}
}

// recordingOptimizer captures its arguments and returns a fixed candidate.
type recordingOptimizer struct {
	starts    []Configuration
	predicate Predicate
	dims      []Dimension
	result    Candidate
	err       error
	scoreAt   Configuration
	scored    ScoreResult
	scoreErr  error
}

func (r *recordingOptimizer) Optimize(
	_ context.Context,
	scorer Scorer,
	dims []Dimension,
	starts []Configuration,
	predicate Predicate,
) (Candidate, error) {
	r.starts = starts
	r.predicate = predicate
	r.dims = dims

	if r.scoreAt != nil {
		r.scored, r.scoreErr = scorer(r.scoreAt)
	}

	return r.result, r.err
}

var errBoom = errors.New("boom")

func intDims(n int, lo, hi float64) []Dimension {
	dims := make([]Dimension, n)
	for i := range dims {
		dims[i] = Dimension{Type: Integer, Min: lo, Max: hi}
	}

	return dims
}
