package workspace

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultFanoutLimit bounds concurrent per-workspace upstream calls.
const DefaultFanoutLimit = 4

// Failure records a workspace whose fetch was skipped.
type Failure struct {
	Workspace Workspace
	Err       error
}

// CollectAll runs fetch for every workspace with at most limit calls in
// flight and concatenates the results in catalog order. Failed workspaces
// are skipped and reported in failures.
func CollectAll[T any](ctx context.Context, c *Catalog, limit int, fetch func(ctx context.Context, ws Workspace) ([]T, error)) (items []T, failures []Failure) {
	if limit <= 0 {
		limit = DefaultFanoutLimit
	}
	all := c.All()
	results := make([][]T, len(all))
	errs := make([]error, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ws := range all {
		g.Go(func() error {
			results[i], errs[i] = fetch(gctx, ws)
			return nil
		})
	}
	_ = g.Wait()

	for i, ws := range all {
		if errs[i] != nil {
			failures = append(failures, Failure{Workspace: ws, Err: errs[i]})
			continue
		}
		items = append(items, results[i]...)
	}
	if items == nil {
		items = []T{}
	}
	return items, failures
}
