package build

import (
	"context"

	"github.com/datawire/dlib/dgroup"
)

// All builds every target concurrently and joins on the whole group.  The
// returned error reflects every failed target, not just the first; a
// failure soft-cancels the targets still in flight, but the join does not
// return until each goroutine has wound down and cleaned up after itself.
func All(ctx context.Context, targets []Target) error {
	group := dgroup.NewGroup(ctx, dgroup.GroupConfig{})
	for _, tgt := range targets {
		tgt := tgt
		group.Go(tgt.Name, func(ctx context.Context) error {
			return Run(ctx, tgt)
		})
	}
	return group.Wait()
}
