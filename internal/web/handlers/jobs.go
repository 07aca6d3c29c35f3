package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of an async session job.
type JobStatus string

// JobStatus constants define the lifecycle states of a session job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ErrSessionBusy reports that another session job currently holds the
// camera. Only one capture or recognition session may run at a time.
var ErrSessionBusy = errors.New("a session is already running")

// Job is one async capture or recognition session. Camera sessions run
// until their cap, their quit key or a cancel request, so the HTTP
// surface starts them in the background and exposes their state here.
type Job struct {
	mu sync.RWMutex

	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Error       string     `json:"error,omitempty"`
	Result      any        `json:"result,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	cancel context.CancelFunc
}

// SetProgress updates the job's progress percentage.
func (j *Job) SetProgress(percent int) {
	j.mu.Lock()
	j.Progress = percent
	j.mu.Unlock()
}

// Cancel requests the job's session loop to stop.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
}

// Snapshot returns a copy safe to serialize while the job is running.
func (j *Job) Snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{
		ID:          j.ID,
		Kind:        j.Kind,
		Status:      j.Status,
		Progress:    j.Progress,
		Error:       j.Error,
		Result:      j.Result,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (j *Job) finish(result any, err error, cancelled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.CompletedAt = &now
	switch {
	case err != nil:
		j.Status = JobStatusFailed
		j.Error = err.Error()
	case cancelled:
		j.Status = JobStatusCancelled
		j.Result = result
	default:
		j.Status = JobStatusCompleted
		j.Result = result
	}
}

// JobManager starts session jobs and serves their state. It admits one
// running job at a time, since all sessions contend for the camera.
type JobManager struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	active *Job
}

// NewJobManager creates an empty job manager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// Start launches run in the background and returns the tracking job.
// Fails with ErrSessionBusy while another job is still running.
func (m *JobManager) Start(kind string, run func(ctx context.Context, job *Job) (any, error)) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return nil, ErrSessionBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    JobStatusRunning,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
	m.jobs[job.ID] = job
	m.active = job

	go func() {
		defer cancel()
		result, err := run(ctx, job)
		job.finish(result, err, ctx.Err() != nil && err == nil)
		m.mu.Lock()
		m.active = nil
		m.mu.Unlock()
	}()

	return job, nil
}

// Get returns a job by id.
func (m *JobManager) Get(id string) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	return job, ok
}
