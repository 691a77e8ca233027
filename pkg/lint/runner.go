package lint

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunAll lints every path with at most jobs files in flight. Results are
// returned in the order of paths. The first fatal error cancels the
// remaining files and is returned.
func (p *Pipeline) RunAll(ctx context.Context, paths []string, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Run(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ExitCode is 0 when every result is clean and 1 otherwise.
func ExitCode(results []*Result) int {
	for _, r := range results {
		if r != nil && !r.Clean() {
			return 1
		}
	}
	return 0
}
