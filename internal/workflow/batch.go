package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// handles a single input; Runner.Handle, Runner.Process and Runner.ConvertFile
// (bound to an empty output) all fit
type FileFunc func(ctx context.Context, path string) (Report, error)

// returned by RunBatch when at least one file failed
type BatchError struct {
	Failed int
	Total  int
	Errs   []error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.Failed, e.Total)
}

func (e *BatchError) Unwrap() []error {
	return e.Errs
}

// runs fn over paths with at most concurrency files in flight. Reports come
// back in the order of paths; a failed file never stops the others.
// Cancelling ctx stops new files from starting.
func RunBatch(ctx context.Context, paths []string, concurrency int, fn FileFunc) ([]Report, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	reports := make([]Report, len(paths))
	var wg sync.WaitGroup

	// limit concurrency
	sem := make(chan struct{}, concurrency)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			cancelled(reports[i:], paths[i:], err)
			break
		}
		select {
		case <-ctx.Done():
			cancelled(reports[i:], paths[i:], ctx.Err())
			wg.Wait()
			return reports, summarize(reports)
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			defer func() { <-sem }()

			started := time.Now()
			report, err := fn(ctx, p)
			if report.Path == "" {
				report.Path = p
			}
			if err != nil {
				report.Status = StatusFailed
				report.Err = err
				if report.Reason == "" {
					report.Reason = err.Error()
				}
			}
			if report.Duration == 0 {
				report.Duration = time.Since(started)
			}
			reports[idx] = report
		}(i, path)
	}

	wg.Wait()
	return reports, summarize(reports)
}

func cancelled(reports []Report, paths []string, err error) {
	for i := range reports {
		reports[i] = Report{
			Path:   paths[i],
			Status: StatusFailed,
			Reason: "cancelled",
			Err:    err,
		}
	}
}

func summarize(reports []Report) error {
	var errs []error
	for _, r := range reports {
		if r.Status == StatusFailed {
			err := r.Err
			if err == nil {
				err = errors.New(r.Reason)
			}
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Failed: len(errs), Total: len(reports), Errs: errs}
}

// counts reports per status
func Tally(reports []Report) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, r := range reports {
		counts[r.Status]++
	}
	return counts
}
