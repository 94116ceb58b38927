package sim

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SweepConfig repeats a base run over node counts and seeds.
type SweepConfig struct {
	Base       Config
	NodeCounts []uint32
	Runs       int

	// Parallelism bounds the number of concurrent runs. Values below 1 mean
	// one run at a time.
	Parallelism int
}

// Sweep executes every combination of node count and run index, calling
// onResult for each finished run. onResult calls are serialised. The first
// error cancels the remaining runs.
func Sweep(ctx context.Context, conf SweepConfig, onResult func(*Result) error) error {
	parallelism := conf.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	var mu sync.Mutex

	for _, n := range conf.NodeCounts {
		for run := 0; run < conf.Runs; run++ {
			runConf := conf.Base
			runConf.NumNodes = n
			runConf.Seed = conf.Base.Seed + int64(run)
			runConf.RunID = ""
			if conf.Base.RunID != "" {
				runConf.RunID = fmt.Sprintf("%s-%d-%d", conf.Base.RunID, n, run)
			}

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				s, err := New(&runConf)
				if err != nil {
					return err
				}
				result, err := s.Run(gctx)
				if err != nil {
					return err
				}

				mu.Lock()
				defer mu.Unlock()
				return onResult(result)
			})
		}
	}

	return g.Wait()
}
