// Package hosel proposes the next configuration for a sequential
// model-based hyperparameter optimizer. Given one density model fit on
// configurations with good outcomes and one fit on configurations with bad
// outcomes, it minimises the ratio of their scores over the search space,
// optionally under a linear sum constraint over a subset of dimensions.
//
// # Features
//
//   - Density-ratio acquisition: good.Score / bad.Score, smaller is better
//   - Sum constraints: the values at chosen dimensions must sum into
//     [Lower, Upper]; the same ConstraintSpec drives sampling, seeding and the
//     optimizer's feasibility check
//   - Mixed search spaces: continuous, integer and discrete dimensions
//   - Pluggable search: any AcquisitionOptimizer can replace the default
//     multi-start compass search
//   - Kernel density models ready to use with the Selector
//   - Structured logging and non-blocking progress updates
//
// # Selecting
//
//	dims := []hosel.Dimension{
//	    {Name: "a", Type: hosel.Integer, Min: 0, Max: 10},
//	    {Name: "b", Type: hosel.Integer, Min: 0, Max: 10},
//	    {Name: "lr", Type: hosel.Continuous, Min: 0.0001, Max: 0.1},
//	}
//	spec := hosel.ConstraintSpec{Lower: 5, Upper: 5, Indices: []int{0, 1}}
//
//	good := hosel.NewKernelDensity(1.0, 0, goodObservations...)
//	bad := hosel.NewKernelDensity(1.0, 0, badObservations...)
//
//	sel := hosel.NewSelector(hosel.DefaultSelectorConfig())
//	next, err := sel.SelectConstrained(ctx, dims, spec, good, bad)
//
// # Sampling under a constraint
//
//	sampler, err := hosel.NewConstraintSampler(spec, dims, hosel.WithSeed(1))
//	point, ok := sampler.Sample() // ok is false when no feasible draw was found
//
// # Thread Safety
//
// ConstraintSpec is a value; give every tuning job its own. Samplers and
// KernelDensity guard their state with mutexes. The default optimizer
// searches one seed at a time unless Parallelism is raised, in which case the
// density models must be safe for concurrent use.
package hosel
