package amadeus

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut runs fetch once per key concurrently and collects the result slices
// indexed by input position, so merge order never depends on completion
// order. A failed key does not cancel its siblings: its error is recorded at
// the same index in errs and its result slot stays empty. Context
// cancellation still stops all branches through the group context.
func fanOut[K any, T any](ctx context.Context, keys []K, fetch func(context.Context, K) ([]T, error)) ([][]T, []error) {
	results := make([][]T, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			out, err := fetch(gctx, key)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

// mergeFirstSeen flattens per-key result batches in input-key order, keeping
// the first occurrence of each identifying code and dropping later
// duplicates across all batches. Codes in seed are treated as already added
// and never appear in the output.
func mergeFirstSeen[T any](batches [][]T, codeOf func(T) string, seed ...string) []T {
	added := make(map[string]struct{}, len(seed))
	for _, code := range seed {
		added[code] = struct{}{}
	}

	var merged []T
	for _, batch := range batches {
		for _, item := range batch {
			code := codeOf(item)
			if _, ok := added[code]; ok {
				continue
			}
			added[code] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}
