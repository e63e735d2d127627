package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBatchOrderedReports(t *testing.T) {
	paths := []string{"a.ass", "b.ass", "c.ass", "d.ass", "e.ass"}

	reports, err := RunBatch(context.Background(), paths, 3, func(_ context.Context, p string) (Report, error) {
		// finish in reverse order
		time.Sleep(time.Duration(len(paths)-int(p[0]-'a')) * time.Millisecond)
		return Report{Path: p, Status: StatusConverted, Blocks: int(p[0] - 'a')}, nil
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	for i, r := range reports {
		if r.Path != paths[i] || r.Blocks != i {
			t.Errorf("report %d out of order: %+v", i, r)
		}
	}
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("%02d.ass", i)
	}

	_, err := RunBatch(context.Background(), paths, 2, func(context.Context, string) (Report, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return Report{Status: StatusConverted}, nil
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if peak > 2 {
		t.Errorf("expected at most 2 files in flight, saw %d", peak)
	}
}

func TestRunBatchCollectsFailures(t *testing.T) {
	boom := errors.New("missing [Events] section")
	paths := []string{"ok.ass", "bad.ass", "ok2.ass"}

	reports, err := RunBatch(context.Background(), paths, 0, func(_ context.Context, p string) (Report, error) {
		if p == "bad.ass" {
			return Report{}, boom
		}
		return Report{Status: StatusConverted}, nil
	})

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if batchErr.Failed != 1 || batchErr.Total != 3 {
		t.Errorf("unexpected counts %+v", batchErr)
	}
	if !errors.Is(err, boom) {
		t.Error("expected underlying error to be reachable")
	}

	if reports[0].Status != StatusConverted || reports[2].Status != StatusConverted {
		t.Error("expected the other files to convert")
	}
	if reports[1].Status != StatusFailed || reports[1].Path != "bad.ass" || reports[1].Reason != boom.Error() {
		t.Errorf("unexpected failed report %+v", reports[1])
	}

	counts := Tally(reports)
	if counts[StatusConverted] != 2 || counts[StatusFailed] != 1 {
		t.Errorf("unexpected tally %v", counts)
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	reports, err := RunBatch(ctx, []string{"a.ass", "b.ass"}, 1, func(context.Context, string) (Report, error) {
		atomic.AddInt32(&calls, 1)
		return Report{Status: StatusConverted}, nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled batch")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no file to start, got %d", calls)
	}
	for _, r := range reports {
		if r.Status != StatusFailed || r.Reason != "cancelled" {
			t.Errorf("expected cancelled report, got %+v", r)
		}
	}
}
