package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a report generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusConverting JobStatus = "converting"
	StatusMerging    JobStatus = "merging"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// SourceFile is one uploaded document awaiting conversion.
type SourceFile struct {
	Name string
	Data []byte
}

// Job tracks the state of a single report generation.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Company string `json:"company"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	files  []SourceFile
	report string
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles     int      `json:"total_files"`
	FilesConverted int      `json:"files_converted"`
	TotalPhases    int      `json:"total_phases"`
	PhasesDone     int      `json:"phases_done"`
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
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
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

// IncrFilesConverted atomically increments converted file count.
func (j *Job) IncrFilesConverted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesConverted++
	j.UpdatedAt = time.Now()
}

// SetTotalFiles records total source file count.
func (j *Job) SetTotalFiles(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalFiles = n
	j.UpdatedAt = time.Now()
}

// SetPhaseProgress records phase completion counts.
func (j *Job) SetPhaseProgress(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PhasesDone = done
	j.Progress.TotalPhases = total
	j.UpdatedAt = time.Now()
}

// SetFiles sets the uploaded source files for processing.
func (j *Job) SetFiles(files []SourceFile) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.files = files
}

// Files returns the uploaded source files.
func (j *Job) Files() []SourceFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files
}

// SetReport stores the assembled report document.
func (j *Job) SetReport(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = text
	j.UpdatedAt = time.Now()
}

// Report returns the assembled report document, empty until generation
// completes.
func (j *Job) Report() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Company  string    `json:"company"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:      j.ID,
		Company: j.Company,
		Status:  j.Status,
		Phase:   j.Phase,
		Progress: Progress{
			TotalFiles:     j.Progress.TotalFiles,
			FilesConverted: j.Progress.FilesConverted,
			TotalPhases:    j.Progress.TotalPhases,
			PhasesDone:     j.Progress.PhasesDone,
			Errors:         errs,
		},
	}
}
