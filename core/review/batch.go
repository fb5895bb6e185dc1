package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// AnalyzeBatch runs Analyze over reviews on a worker pool. Outcomes are
// returned in input order; per-review failures are recorded on each Outcome
// rather than returned. The error is non-nil only when the pool cannot be
// created.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, reviews []string) ([]Outcome, error) {
	return a.batch(ctx, reviews, a.Analyze)
}

// AnalyzeBatchStructured is AnalyzeBatch using AnalyzeStructured.
func (a *Analyzer) AnalyzeBatchStructured(ctx context.Context, reviews []string) ([]Outcome, error) {
	return a.batch(ctx, reviews, a.AnalyzeStructured)
}

func (a *Analyzer) batch(
	ctx context.Context,
	reviews []string,
	analyze func(context.Context, string) (Outcome, error),
) ([]Outcome, error) {
	outcomes := make([]Outcome, len(reviews))
	if len(reviews) == 0 {
		return outcomes, nil
	}

	pool, err := ants.NewPool(min(a.workers, len(reviews)))
	if err != nil {
		return nil, fmt.Errorf("review: create worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	var wg sync.WaitGroup
	for i, text := range reviews {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			outcome, err := analyze(ctx, text)
			if err != nil {
				outcome.Err = err
			}
			outcomes[i] = outcome
		})
		if submitErr != nil {
			wg.Done()
			outcomes[i] = errorOutcome(fmt.Errorf("review: submit review %d: %w", i, submitErr))
		}
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	a.logger.InfoContext(ctx, "review batch finished",
		slog.Int("reviews", len(reviews)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)
	return outcomes, nil
}
