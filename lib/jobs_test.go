package lib

import (
	"fmt"
	"sync"
	"testing"
)

func TestJobTrackerPutGet(t *testing.T) {
	tracker := NewJobTracker()
	if _, ok := tracker.Get("missing"); ok {
		t.Error("found a job that was never put")
	}

	tracker.Put(VideoJob{ID: "clip", Status: StatusProcessing, ProgressPercent: 40})
	job, ok := tracker.Get("clip")
	if !ok || job.Status != StatusProcessing || job.ProgressPercent != 40 {
		t.Errorf("got %+v", job)
	}

	tracker.Put(VideoJob{ID: "clip", Status: StatusCompleted, ProgressPercent: 100})
	job, _ = tracker.Get("clip")
	if job.Status != StatusCompleted {
		t.Errorf("update lost: %+v", job)
	}
}

func TestJobTrackerSnapshotSorted(t *testing.T) {
	tracker := NewJobTracker()
	for _, id := range []string{"c", "a", "b"} {
		tracker.Put(VideoJob{ID: id})
	}
	jobs := tracker.Snapshot()
	if len(jobs) != 3 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if jobs[i].ID != want {
			t.Errorf("jobs[%d] = %s, want %s", i, jobs[i].ID, want)
		}
	}
}

func TestJobTrackerConcurrentAccess(t *testing.T) {
	tracker := NewJobTracker()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("job%d", w)
			for p := 0; p <= 100; p++ {
				tracker.Put(VideoJob{ID: id, ProgressPercent: p})
				tracker.Get(id)
				tracker.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	if len(tracker.Snapshot()) != 8 {
		t.Errorf("got %d jobs, want 8", len(tracker.Snapshot()))
	}
}
