package prep

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item on at most workers goroutines. Results keep the
// input order. The first error cancels the remaining work and Map returns that
// error with no results.
func Map[T, U any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, index int, item T) (U, error)) ([]U, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]U, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			value, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			out[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
