package queue

import (
	"sync"
	"testing"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return Event{}
	}
	return p.events[len(p.events)-1]
}

func TestEnqueueRejectsWhileRunning(t *testing.T) {
	pub := &recordingPublisher{}
	q := New(pub)

	if _, err := q.Enqueue("deposit-a", 2); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	q.MarkRunning()

	if _, err := q.Enqueue("deposit-b", 1); err != ErrJobInFlight {
		t.Fatalf("got %v want ErrJobInFlight", err)
	}
}

func TestEnqueueAllowedAfterTerminal(t *testing.T) {
	pub := &recordingPublisher{}
	q := New(pub)

	if _, err := q.Enqueue("deposit-a", 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	q.MarkRunning()
	q.Complete("deposit-a.proof-1.json", 1.5)

	if _, err := q.Enqueue("deposit-b", 1); err != nil {
		t.Fatalf("expected re-enqueue to succeed after Completed, got %v", err)
	}
}

func TestUpdateProgressIgnoredOutsideRunning(t *testing.T) {
	pub := &recordingPublisher{}
	q := New(pub)
	q.Enqueue("deposit-a", 3)

	q.UpdateProgress(1, "proving note 1", "prove", 100, 1, 0.1, 0.1)
	if got := pub.last().Type; got != EventStarted {
		t.Fatalf("expected no progress event while Queued, last event was %q", got)
	}

	q.MarkRunning()
	q.UpdateProgress(1, "proving note 1", "prove", 100, 1, 0.1, 0.1)
	last := pub.last()
	if last.Type != EventNoteProgress || last.CurrentNote != 1 {
		t.Fatalf("expected note_progress event, got %+v", last)
	}
}

func TestCancelWhileRunningMarksCancelledAndClosesChannel(t *testing.T) {
	pub := &recordingPublisher{}
	q := New(pub)
	cancelCh, _ := q.Enqueue("deposit-a", 1)
	q.MarkRunning()

	cancelled, _ := q.Cancel()
	if !cancelled {
		t.Fatal("expected cancellation to be accepted while Running")
	}
	select {
	case <-cancelCh:
	default:
		t.Fatal("expected cancel channel to be closed")
	}

	job := q.Current()
	if job.Status != StatusCancelled {
		t.Fatalf("got status %v want Cancelled", job.Status)
	}
}

func TestCancelWithNoJobClearsNothingAndReportsIdle(t *testing.T) {
	q := New(nil)
	cancelled, msg := q.Cancel()
	if cancelled {
		t.Fatal("expected cancel to report not-cancelled with an empty slot")
	}
	if msg == "" {
		t.Fatal("expected a human-readable idle message")
	}
}

func TestCancelClearsTerminalSlot(t *testing.T) {
	q := New(nil)
	q.Enqueue("deposit-a", 1)
	q.MarkRunning()
	q.Complete("f.json", 1.0)

	cancelled, _ := q.Cancel()
	if cancelled {
		t.Fatal("expected cancel on a terminal job to report not-cancelled")
	}
	if q.Current() != nil {
		t.Fatal("expected the terminal slot to be cleared")
	}
}

func TestFailRecordsNoteIndexAndError(t *testing.T) {
	pub := &recordingPublisher{}
	q := New(pub)
	q.Enqueue("deposit-a", 2)
	q.MarkRunning()
	q.Fail(1, "rpc: timeout")

	job := q.Current()
	if job.Status != StatusFailed {
		t.Fatalf("got status %v want Failed", job.Status)
	}
	if job.Error != "rpc: timeout" {
		t.Fatalf("got error %q", job.Error)
	}
	last := pub.last()
	if last.Type != EventFailed || last.NoteIndex != 1 {
		t.Fatalf("expected failed event with noteIndex 1, got %+v", last)
	}
}

func TestCurrentReturnsNilWhenEmpty(t *testing.T) {
	q := New(nil)
	if q.Current() != nil {
		t.Fatal("expected nil for an empty slot")
	}
}
