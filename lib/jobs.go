package lib

import (
	"sort"
	"sync"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// VideoJob is the per-video processing record. It is mutated only by the
// worker processing that video and becomes terminal once completed or failed.
type VideoJob struct {
	ID              string
	InputPath       string
	ColorOutputPath string
	FinalOutputPath string
	Status          JobStatus
	ProgressPercent int
	ErrorMessage    string
}

// JobTracker is a concurrent-safe map of job id to the latest job snapshot.
// Each job has a single writer (the worker processing it); any number of
// observers may read snapshots, e.g. a progress-polling layer.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]VideoJob
}

func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]VideoJob)}
}

func (t *JobTracker) Put(job VideoJob) {
	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()
}

func (t *JobTracker) Get(id string) (VideoJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	return job, ok
}

// Snapshot returns all jobs ordered by id.
func (t *JobTracker) Snapshot() []VideoJob {
	t.mu.RLock()
	jobs := make([]VideoJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, job)
	}
	t.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs
}
