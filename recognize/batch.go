package recognize

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ddvk/inkcalc/log"
	"github.com/ddvk/inkcalc/stroke"
)

// Outcome is the recognition result for one cluster of a batch.
type Outcome struct {
	Cluster stroke.Cluster
	Result  Result
	Err     error
}

// RecognizeAll recognizes independent clusters, such as every equation on
// a page, with at most parallelism backend calls in flight. Nothing is
// displayed; usable results are cached and saved. Outcomes keep the order
// of clusters.
func (o *Orchestrator) RecognizeAll(ctx context.Context, clusters []stroke.Cluster, parallelism int64) []Outcome {
	if parallelism < 1 {
		parallelism = 1
	}
	out := make([]Outcome, len(clusters))

	sem := semaphore.NewWeighted(parallelism)
	for i, c := range clusters {
		out[i].Cluster = c
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Trace.Printf("Failed to acquire semaphore: %v", err)
			for j := i; j < len(clusters); j++ {
				out[j] = Outcome{Cluster: clusters[j], Err: err}
			}
			break
		}
		go func(i int, c stroke.Cluster) {
			defer sem.Release(1)
			res, err := o.recognizeCached(ctx, c)
			out[i].Result, out[i].Err = res, err
			if err == nil && res.Usable() {
				o.save(ctx, c.Signature(), res, c.Bounds, time.Now())
			}
		}(i, c)
	}

	// Wait for all goroutines to finish
	if err := sem.Acquire(context.Background(), parallelism); err != nil {
		log.Trace.Printf("Failed to acquire semaphore: %v", err)
	}
	return out
}
