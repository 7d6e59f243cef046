package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an asynchronous batch job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job tracks one batch submitted through the Orchestrator.
type Job struct {
	mu sync.Mutex

	ID        string    `json:"job_id"`
	Operation Operation `json:"operation"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs  []Input
	options Options
	result  *BatchResult
	errors  []string
}

// Progress tracks processed items.
type Progress struct {
	TotalItems     int      `json:"total_items"`
	ItemsProcessed int      `json:"items_processed"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetItemsProcessed records how many items have finished.
func (j *Job) SetItemsProcessed(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ItemsProcessed = n
	j.UpdatedAt = time.Now()
}

// SetInputs sets the items and options to process.
func (j *Job) SetInputs(inputs []Input, opts Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inputs = inputs
	j.options = opts
	j.Progress.TotalItems = len(inputs)
}

// Inputs returns the items and options to process.
func (j *Job) Inputs() ([]Input, Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs, j.options
}

// SetResult stores the finished batch and releases the raw inputs.
func (j *Job) SetResult(r *BatchResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.inputs = nil
	j.UpdatedAt = time.Now()
}

// Result returns the finished batch, or nil while the job is pending.
func (j *Job) Result() *BatchResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string       `json:"job_id"`
	Operation Operation    `json:"operation"`
	Status    JobStatus    `json:"status"`
	Phase     string       `json:"phase"`
	Progress  Progress     `json:"progress"`
	Result    *BatchResult `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:        j.ID,
		Operation: j.Operation,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress: Progress{
			TotalItems:     j.Progress.TotalItems,
			ItemsProcessed: j.Progress.ItemsProcessed,
			Errors:         errs,
		},
		Result: j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
