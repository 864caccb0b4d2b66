package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run pairs a simulator with its initial state for concurrent execution.
type Run struct {
	Sim *Simulator
	X0  State
}

// RunAll executes independent simulators concurrently and returns their
// results in input order. The first error cancels the remaining runs.
func RunAll(ctx context.Context, runs []Run, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(runs))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range runs {
		i, r := i, r
		g.Go(func() error {
			res, err := r.Sim.Run(ctx, r.X0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
