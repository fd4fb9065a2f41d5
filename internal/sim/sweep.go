package sim

import (
	"context"
	"sync"
)

// Outcome is one run of a Sweep.
type Outcome struct {
	Seed   int64
	Result *Result
	Err    error
}

// Sweep runs n independent simulations in parallel, seeding run i with
// seedStart+i. build must return a fresh Runner per call.
func Sweep(ctx context.Context, n int, seedStart int64, build func(seed int64) (*Runner, error)) []Outcome {
	outcomes := make([]Outcome, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := seedStart + int64(idx)
			outcomes[idx].Seed = seed

			r, err := build(seed)
			if err != nil {
				outcomes[idx].Err = err
				return
			}
			outcomes[idx].Result, outcomes[idx].Err = r.Run(ctx)
		}(i)
	}

	wg.Wait()
	return outcomes
}

// SuccessRate returns the fraction of outcomes that ended parked.
func SuccessRate(outcomes []Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	ok := 0
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil && o.Result.Parked {
			ok++
		}
	}
	return float64(ok) / float64(len(outcomes))
}
