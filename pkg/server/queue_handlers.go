package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/taikoxyz/shadow/pkg/deposit"
	"github.com/taikoxyz/shadow/pkg/pipeline"
	"github.com/taikoxyz/shadow/pkg/queue"
)

func workspaceChangedEvent() queue.Event {
	return queue.Event{Type: queue.EventWorkspace}
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.cfg.Queue.Current())
}

func (s *Server) handleQueueCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cancelled, message := s.cfg.Queue.Cancel()
	writeJSON(w, map[string]interface{}{"cancelled": cancelled, "message": message})
}

func (s *Server) handleDepositProve(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, ok, err := s.findDeposit(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSONError(w, "deposit not found", http.StatusNotFound)
		return
	}

	d, err := deposit.Load(filepath.Join(s.cfg.Workspace, entry.Filename))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if entry.ProofFilename != "" && !force {
		writeJSONError(w, "a proof already exists for this deposit; pass force=true to re-prove", http.StatusConflict)
		return
	}

	// On a forced re-prove, the existing proof is backed up to .bkup
	// immediately, before the job is even enqueued, so the deposit shows as
	// unproved for the duration of the regeneration rather than only after
	// it succeeds.
	if force && entry.ProofFilename != "" {
		src := filepath.Join(s.cfg.Workspace, entry.ProofFilename)
		dst := src + ".bkup"
		if err := os.Rename(src, dst); err != nil {
			writeJSONError(w, fmt.Sprintf("backing up existing proof: %v", err), http.StatusInternalServerError)
			return
		}
		s.publishWorkspaceChanged()
	}

	cancel, err := s.cfg.Queue.Enqueue(id, len(d.Notes))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.JobsStarted.Inc()
		s.cfg.Metrics.QueueDepth.Set(1)
	}

	go s.runProofJob(entry.Filename, cancel)

	writeJSONStatus(w, http.StatusAccepted, s.cfg.Queue.Current())
}

// runProofJob drives the pipeline for one deposit on a background goroutine,
// translating its outcome into queue transitions and push-channel events.
func (s *Server) runProofJob(depositFile string, cancel <-chan struct{}) {
	start := time.Now()
	s.cfg.Queue.MarkRunning()

	proofFile, noteIndex, err := pipeline.Run(context.Background(), s.cfg.Workspace, depositFile, s.cfg.Client, s.cfg.Prover, s.cfg.Queue, s.cfg.Metrics, cancel)

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.QueueDepth.Set(0)
	}

	switch {
	case err == pipeline.ErrCancelled:
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.JobsCancelled.Inc()
		}
	case err != nil:
		s.logger.Printf("proof job for %s failed at note %d: %v", depositFile, noteIndex, err)
		s.cfg.Queue.Fail(noteIndex, err.Error())
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.JobsFailed.Inc()
		}
	default:
		s.cfg.Queue.Complete(proofFile, time.Since(start).Seconds())
		s.publishWorkspaceChanged()
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.JobsCompleted.Inc()
		}
	}
}
