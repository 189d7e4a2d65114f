package worker

import (
	"sync/atomic"
	"testing"
)

func TestLookupPool(t *testing.T) {
	InitWorkerPools(0)
	defer CloseWorkerPools()

	var n atomic.Int32
	group := GetLookupPool().NewGroup()
	for range 5 {
		group.Submit(func() { n.Add(1) })
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if got := n.Load(); got != 5 {
		t.Errorf("ran %d tasks, want 5", got)
	}
	stats := GetWorkerStats(GetLookupPool())
	if stats.SubmittedTasks != 5 || stats.SuccessfulTasks != 5 {
		t.Errorf("unexpected stats %+v", stats)
	}
	LogPoolStats()
}

func TestGetWorkerStatsNil(t *testing.T) {
	if s := GetWorkerStats(nil); s != (StatsDetail{}) {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestDispatchCron(t *testing.T) {
	cronWorker = nil
	if _, err := DispatchCron("@every 1m", "stats", func() {}); err != ErrNoCron {
		t.Fatalf("expected ErrNoCron, got %v", err)
	}

	CreateCronWorker()
	defer StopCronWorker()

	if _, err := DispatchCron("not a schedule", "broken", func() {}); err == nil {
		t.Error("expected parse error")
	}

	var runs atomic.Int32
	id, err := DispatchCron("@every 5m", "stats", func() { runs.Add(1) })
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := DispatchCron("0 */10 * * * *", "with seconds", func() {}); err != nil {
		t.Errorf("six field spec rejected: %v", err)
	}

	cronWorker.Entry(id).Job.Run()
	if runs.Load() != 1 {
		t.Errorf("job did not run")
	}

	var found bool
	for _, s := range GetSchedules() {
		if s.ID == id {
			found = true
			if s.Name != "stats" || s.LastRun.IsZero() || s.IsRunning {
				t.Errorf("unexpected schedule %+v", s)
			}
		}
	}
	if !found {
		t.Fatal("schedule not listed")
	}

	RemoveCron(id)
	for _, s := range GetSchedules() {
		if s.ID == id {
			t.Error("schedule still listed after remove")
		}
	}
}
