// Package queue implements the single-slot proof job state machine: at most
// one proof job is in flight at a time, with cooperative cancellation
// through a one-shot channel the pipeline polls at checkpoints.
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a proof job's position in its lifecycle.
type Status string

const (
	StatusQueued Status = "Queued"
	StatusRunning Status = "Running"
	StatusCompleted Status = "Completed"
	StatusFailed Status = "Failed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ErrJobInFlight is returned by Enqueue when a job is already Queued or Running.
var ErrJobInFlight = errors.New("queue: a proof job is already queued or running")

// Job is the single in-memory job instance the queue tracks.
type Job struct {
	JobID uuid.UUID `json:"jobId"`
	DepositID string `json:"depositId"`
	Status Status `json:"status"`
	CurrentNote int `json:"currentNote"`
	TotalNotes int `json:"totalNotes"`
	Message string `json:"message,omitempty"`
	Error string `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// snapshot returns a value copy safe to hand to callers outside the lock.
func (j *Job) snapshot() Job {
	return *j
}

// Event is a structured progress update fanned out to push-channel
// subscribers as the pipeline advances a job.
type Event struct {
	Type string `json:"type"`
	DepositID string `json:"depositId,omitempty"`
	CurrentNote int `json:"currentNote,omitempty"`
	TotalNotes int `json:"totalNotes,omitempty"`
	Message string `json:"message,omitempty"`
	Stage string `json:"stage,omitempty"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	ChainID uint64 `json:"chainId,omitempty"`
	ElapsedSecs float64 `json:"elapsedSecs,omitempty"`
	NoteElapsedSecs float64 `json:"noteElapsedSecs,omitempty"`
	ProofFile string `json:"proofFile,omitempty"`
	NoteIndex int `json:"noteIndex,omitempty"`
	Error string `json:"error,omitempty"`
}

// Event type names, stable on the push channel.
const (
	EventStarted = "proof:started"
	EventNoteProgress = "proof:note_progress"
	EventCompleted = "proof:completed"
	EventFailed = "proof:failed"
	EventWorkspace = "workspace:changed"
)

// Publisher fans an event out to every push-channel subscriber. The queue
// depends only on this narrow interface so tests don't need a real
// websocket hub.
type Publisher interface {
	Publish(Event)
}

// Queue guards the single job slot and owns the cancellation sender for
// whichever job is currently running.
type Queue struct {
	mu sync.Mutex
	job *Job
	cancel chan struct{}
	pub Publisher
}

// New constructs an empty queue that fans events out through pub.
func New(pub Publisher) *Queue {
	return &Queue{pub: pub}
}

// Enqueue admits a new job, failing with ErrJobInFlight if one is already
// Queued or Running. A Completed/Failed/Cancelled slot may be overwritten.
// Returns a cancellation channel the pipeline must poll at checkpoints.
func (q *Queue) Enqueue(depositID string, totalNotes int) (<-chan struct{}, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.job != nil && !q.job.Status.terminal() {
		return nil, ErrJobInFlight
	}

	q.cancel = make(chan struct{})
	q.job = &Job{
		JobID: uuid.New(),
		DepositID: depositID,
		Status: StatusQueued,
		TotalNotes: totalNotes,
		StartedAt: time.Now(),
	}
	q.publish(Event{Type: EventStarted, DepositID: depositID, TotalNotes: totalNotes})
	return q.cancel, nil
}

// MarkRunning transitions the current job from Queued to Running.
func (q *Queue) MarkRunning() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.job != nil && q.job.Status == StatusQueued {
		q.job.Status = StatusRunning
	}
}

// UpdateProgress records the current note and message, and fans out a
// proof:note_progress event. Only meaningful while the job is Running.
func (q *Queue) UpdateProgress(currentNote int, message, stage string, blockNumber, chainID uint64, elapsedSecs, noteElapsedSecs float64) {
	q.mu.Lock()
	if q.job == nil || q.job.Status != StatusRunning {
		q.mu.Unlock()
		return
	}
	q.job.CurrentNote = currentNote
	q.job.Message = message
	depositID := q.job.DepositID
	total := q.job.TotalNotes
	q.mu.Unlock()

	q.publish(Event{
		Type: EventNoteProgress,
		DepositID: depositID,
		CurrentNote: currentNote,
		TotalNotes: total,
		Message: message,
		Stage: stage,
		BlockNumber: blockNumber,
		ChainID: chainID,
		ElapsedSecs: elapsedSecs,
		NoteElapsedSecs: noteElapsedSecs,
	})
}

// Complete transitions the job to Completed and fans out proof:completed.
func (q *Queue) Complete(proofFile string, elapsedSecs float64) {
	q.mu.Lock()
	if q.job == nil {
		q.mu.Unlock()
		return
	}
	q.job.Status = StatusCompleted
	depositID := q.job.DepositID
	q.mu.Unlock()

	q.publish(Event{Type: EventCompleted, DepositID: depositID, ProofFile: proofFile, ElapsedSecs: elapsedSecs})
}

// Fail transitions the job to Failed, recording the note index the failure
// occurred at and a flat error string, and fans out proof:failed.
func (q *Queue) Fail(noteIndex int, errMsg string) {
	q.mu.Lock()
	if q.job == nil {
		q.mu.Unlock()
		return
	}
	q.job.Status = StatusFailed
	q.job.Error = errMsg
	depositID := q.job.DepositID
	q.mu.Unlock()

	q.publish(Event{Type: EventFailed, DepositID: depositID, NoteIndex: noteIndex, Error: errMsg})
}

// Cancel sends a one-shot signal to the in-flight pipeline and marks the
// job Cancelled. If no job is in flight (the slot is empty or terminal),
// it clears the slot instead so the status endpoint reports idle.
func (q *Queue) Cancel() (cancelled bool, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.job == nil {
		return false, "no job in flight"
	}
	if q.job.Status.terminal() {
		q.job = nil
		return false, "cleared idle slot"
	}

	q.job.Status = StatusCancelled
	if q.cancel != nil {
		close(q.cancel)
		q.cancel = nil
	}
	return true, "cancellation requested"
}

// Current returns a snapshot of the job, or nil if the slot is empty.
func (q *Queue) Current() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.job == nil {
		return nil
	}
	snap := q.job.snapshot()
	return &snap
}

func (q *Queue) publish(ev Event) {
	if q.pub != nil {
		q.pub.Publish(ev)
	}
}
