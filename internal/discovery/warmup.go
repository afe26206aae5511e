// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"runtime"

	"github.com/invowk/envscout/internal/pyenv"

	"golang.org/x/sync/errgroup"
)

// WarmUp probes the version of every environment concurrently, at most limit
// at a time (limit <= 0 means GOMAXPROCS). It returns the environments whose
// probe succeeded, in input order; failures are recorded as diagnostics.
//
// Each environment still probes at most once, so passing the same instance
// twice or warming an already probed environment spawns nothing extra.
func (d *Discovery) WarmUp(ctx context.Context, envs []*pyenv.Environment, limit int) []*pyenv.Environment {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	ok := make([]bool, len(envs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, env := range envs {
		g.Go(func() error {
			if _, err := env.Version(gctx); err != nil {
				d.skip(CodeProbeFailed, env.Executable(), err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	usable := make([]*pyenv.Environment, 0, len(envs))
	for i, env := range envs {
		if ok[i] {
			usable = append(usable, env)
		}
	}
	return usable
}
