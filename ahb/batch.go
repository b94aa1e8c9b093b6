package ahb

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BatchResult holds the units generated from one seed.
type BatchResult struct {
	Seed  int64
	Units [][]Transaction
}

// Batch runs one generator per seed concurrently. Each generator owns a fresh
// random source, so every result is the same as a serial run with that seed.
// A canceled context stops all generators.
func Batch(
	ctx context.Context,
	b GeneratorBuilder,
	seeds []int64,
	calls int,
) ([]BatchResult, error) {
	results := make([]BatchResult, len(seeds))
	grp, ctx := errgroup.WithContext(ctx)

	for i, seed := range seeds {
		grp.Go(func() error {
			gen := b.WithSeed(seed).Build()
			units := make([][]Transaction, 0, calls)

			for c := 0; c < calls; c++ {
				if c%256 == 0 {
					err := ctx.Err()
					if err != nil {
						return errors.Wrapf(err, "seed %d", seed)
					}
				}

				units = append(units, gen.Next())
			}

			results[i] = BatchResult{Seed: seed, Units: units}

			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}
