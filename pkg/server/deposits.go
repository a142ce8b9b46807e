package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taikoxyz/shadow/pkg/deposit"
	"github.com/taikoxyz/shadow/pkg/workspace"
)

// depositCreateRequest is the body of POST /deposits.
type depositCreateRequest struct {
	ChainID string `json:"chainId"`
	Notes []depositNoteRequest `json:"notes"`
	Comment string `json:"comment,omitempty"`
}

type depositNoteRequest struct {
	Recipient string `json:"recipient"`
	Amount string `json:"amount"`
	Label string `json:"label,omitempty"`
}

func (s *Server) handleDepositsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDeposits(w, r)
	case http.MethodPost:
		s.createDeposit(w, r)
	default:
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listDeposits(w http.ResponseWriter, r *http.Request) {
	idx, err := workspace.Scan(s.cfg.Workspace)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, idx)
}

func (s *Server) createDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	chainID, err := strconv.ParseUint(req.ChainID, 10, 64)
	if err != nil {
		writeJSONError(w, "chainId must be a decimal string", http.StatusBadRequest)
		return
	}
	if len(req.Notes) == 0 {
		writeJSONError(w, "at least one note is required", http.StatusBadRequest)
		return
	}

	notes := make([]deposit.NoteInput, len(req.Notes))
	for i, n := range req.Notes {
		notes[i] = deposit.NoteInput{Recipient: n.Recipient, Amount: n.Amount, Label: n.Label}
	}

	result, err := deposit.Mine(chainID, notes, req.Comment, s.cfg.RequirePoW)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := deposit.Save(filepath.Join(s.cfg.Workspace, result.Filename), result.Descriptor); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.publishWorkspaceChanged()

	writeJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"filename": result.Filename,
		"targetAddress": "0x" + hexString(result.TargetAddress[:]),
		"totalAmount": result.TotalAmount,
		"iterations": result.Iterations,
	})
}

// handleDepositsSubtree dispatches every /api/deposits/{id}[...] route by
// trimming the prefix and splitting the remaining path into segments.
func (s *Server) handleDepositsSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/deposits/")
	if path == "" || path == r.URL.Path {
		writeJSONError(w, "deposit id required", http.StatusBadRequest)
		return
	}
	segments := strings.Split(path, "/")
	id := segments[0]

	switch {
	case len(segments) == 1:
		s.handleDepositByID(w, r, id)
	case len(segments) == 2 && segments[1] == "proof":
		s.handleDepositProof(w, r, id)
	case len(segments) == 2 && segments[1] == "prove":
		s.handleDepositProve(w, r, id)
	case len(segments) == 4 && segments[1] == "notes" && segments[3] == "status":
		s.handleNoteStatus(w, r, id, segments[2], false)
	case len(segments) == 4 && segments[1] == "notes" && segments[3] == "refresh":
		s.handleNoteStatus(w, r, id, segments[2], true)
	case len(segments) == 4 && segments[1] == "notes" && segments[3] == "claim-tx":
		s.handleNoteClaimTx(w, r, id, segments[2])
	default:
		writeJSONError(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) handleDepositByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		entry, ok, err := s.findDeposit(id)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			writeJSONError(w, "deposit not found", http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	case http.MethodDelete:
		s.deleteDeposit(w, r, id)
	default:
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) deleteDeposit(w http.ResponseWriter, r *http.Request, id string) {
	entry, ok, err := s.findDeposit(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSONError(w, "deposit not found", http.StatusNotFound)
		return
	}

	includeProof := r.URL.Query().Get("includeProof") == "true"

	var deleted []string
	if err := os.Remove(filepath.Join(s.cfg.Workspace, entry.Filename)); err != nil && !os.IsNotExist(err) {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	deleted = append(deleted, entry.Filename)

	if includeProof && entry.ProofFilename != "" {
		if err := os.Remove(filepath.Join(s.cfg.Workspace, entry.ProofFilename)); err != nil && !os.IsNotExist(err) {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		deleted = append(deleted, entry.ProofFilename)
	}

	s.publishWorkspaceChanged()
	writeJSON(w, map[string]interface{}{"deleted": deleted})
}

func (s *Server) handleDepositProof(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, ok, err := s.findDeposit(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok || entry.ProofFilename == "" {
		writeJSONError(w, "proof not found", http.StatusNotFound)
		return
	}

	if err := os.Remove(filepath.Join(s.cfg.Workspace, entry.ProofFilename)); err != nil && !os.IsNotExist(err) {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.publishWorkspaceChanged()
	writeJSON(w, map[string]interface{}{"deleted": []string{entry.ProofFilename}})
}

// findDeposit scans the workspace and returns the entry whose stem matches
// id, since deposit stems are the facade's stable identifier.
func (s *Server) findDeposit(id string) (workspace.DepositEntry, bool, error) {
	idx, err := workspace.Scan(s.cfg.Workspace)
	if err != nil {
		return workspace.DepositEntry{}, false, err
	}
	for _, d := range idx.Deposits {
		if d.Stem == id {
			return d, true, nil
		}
	}
	return workspace.DepositEntry{}, false, nil
}

func (s *Server) publishWorkspaceChanged() {
	if s.cfg.Hub != nil {
		s.cfg.Hub.Publish(workspaceChangedEvent())
	}
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
