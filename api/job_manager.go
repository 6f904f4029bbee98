package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/machoscope/machoscope/config"
	"github.com/machoscope/machoscope/loader"
)

// ErrJobNotFound is returned when a job ID has no matching job.
var ErrJobNotFound = errors.New("job not found")

// JobState is a job's lifecycle state.
type JobState string

const (
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Job is one in-flight or completed analysis. Each Job's Result is owned
// by exactly one goroutine (the one running Analyze) until that goroutine
// stores it and flips State to JobDone/JobFailed; readers only ever see a
// fully-formed Result, never a partially-written one.
type Job struct {
	ID        string
	Path      string
	CreatedAt time.Time

	mu     sync.RWMutex
	state  JobState
	err    error
	result *loader.Result
}

func (j *Job) snapshot() (JobState, error, *loader.Result) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state, j.err, j.result
}

func (j *Job) finish(result *loader.Result, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.state = JobFailed
		j.err = err
		return
	}
	j.state = JobDone
	j.result = result
}

// JobManager runs and tracks analysis jobs, one goroutine per job.
type JobManager struct {
	cfg         *config.Config
	broadcaster *Broadcaster

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a job manager that runs loader.Analyze with cfg.
func NewJobManager(cfg *config.Config, broadcaster *Broadcaster) *JobManager {
	return &JobManager{
		cfg:         cfg,
		broadcaster: broadcaster,
		jobs:        make(map[string]*Job),
	}
}

// Submit starts analysis of path in a new goroutine and returns immediately
// with the job's ID. The goroutine owns its own Result until completion.
func (m *JobManager) Submit(ctx context.Context, path string, forceArch string) (*Job, error) {
	id, err := generateJobID()
	if err != nil {
		return nil, err
	}

	cfg := *m.cfg
	if forceArch != "" {
		cfg.Disassembly.ForceArch = forceArch
	}

	job := &Job{ID: id, Path: path, CreatedAt: time.Now(), state: JobRunning}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	go m.run(ctx, job, &cfg)

	return job, nil
}

func (m *JobManager) run(ctx context.Context, job *Job, cfg *config.Config) {
	m.broadcaster.BroadcastJobState(job.ID, string(JobRunning))

	result, err := loader.Analyze(ctx, job.Path, cfg)
	job.finish(result, err)

	if err != nil {
		m.broadcaster.BroadcastJobState(job.ID, string(JobFailed))
		return
	}
	m.broadcaster.BroadcastJobState(job.ID, string(JobDone))
}

// Get retrieves a job by ID.
func (m *JobManager) Get(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Delete removes a completed or failed job's record. Does not cancel a
// still-running job; callers should cancel via the context passed to Submit.
func (m *JobManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

// List returns every tracked job ID.
func (m *JobManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of tracked jobs.
func (m *JobManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

func generateJobID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
