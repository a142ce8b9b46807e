package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/shadow/pkg/chainrpc"
	"github.com/taikoxyz/shadow/pkg/pipeline"
)

// handleNoteStatus answers GET .../notes/{i}/status and POST
// .../notes/{i}/refresh, both against the nullifier cache in front of an
// isConsumed eth_call.
func (s *Server) handleNoteStatus(w http.ResponseWriter, r *http.Request, id, noteIndexStr string, forceRefresh bool) {
	wantMethod := http.MethodGet
	if forceRefresh {
		wantMethod = http.MethodPost
	}
	if r.Method != wantMethod {
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

	noteIndex, err := strconv.Atoi(noteIndexStr)
	if err != nil || noteIndex < 0 || noteIndex >= len(entry.Nullifiers) {
		writeJSONError(w, "invalid note index", http.StatusBadRequest)
		return
	}

	var nullifier [32]byte
	copy(nullifier[:], common.FromHex(entry.Nullifiers[noteIndex]))

	if forceRefresh && s.cfg.Cache != nil {
		s.cfg.Cache.Clear(nullifier)
	}

	if !forceRefresh && s.cfg.Cache != nil {
		if status, hit := s.cfg.Cache.Get(nullifier); hit {
			writeJSON(w, noteStatusResponse(noteIndex, status, true))
			return
		}
	}

	if s.cfg.Client == nil || s.cfg.ShadowAddress == "" {
		writeJSON(w, noteStatusResponse(noteIndex, chainrpc.StatusUnknown, false))
		return
	}

	calldata, err := pipeline.IsConsumedCalldata(nullifier)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	result, err := s.cfg.Client.Call(r.Context(), common.HexToAddress(s.cfg.ShadowAddress), calldata)
	if err != nil {
		writeJSON(w, noteStatusResponse(noteIndex, chainrpc.StatusUnknown, false))
		return
	}
	consumed, err := pipeline.DecodeIsConsumed(result)
	if err != nil {
		writeJSON(w, noteStatusResponse(noteIndex, chainrpc.StatusUnknown, false))
		return
	}

	status := chainrpc.StatusUnclaimed
	if consumed {
		status = chainrpc.StatusClaimed
	}
	if s.cfg.Cache != nil {
		s.cfg.Cache.Set(nullifier, status)
	}
	writeJSON(w, noteStatusResponse(noteIndex, status, false))
}

// handleNoteClaimTx answers GET .../notes/{i}/claim-tx: the caller assembles
// and sends the transaction themselves.
func (s *Server) handleNoteClaimTx(w http.ResponseWriter, r *http.Request, id, noteIndexStr string) {
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, ok, err := s.findDeposit(id)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok || entry.ProofFilename == "" {
		writeJSONError(w, "no proof available for this deposit", http.StatusNotFound)
		return
	}

	noteIndex, err := strconv.Atoi(noteIndexStr)
	if err != nil || noteIndex < 0 {
		writeJSONError(w, "invalid note index", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.Workspace, entry.ProofFilename))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var bundle pipeline.BundledProofArtifact
	if err := json.Unmarshal(data, &bundle); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if noteIndex >= len(bundle.Notes) {
		writeJSONError(w, "note index out of range for this proof", http.StatusBadRequest)
		return
	}

	note := bundle.Notes[noteIndex]
	writeJSON(w, map[string]interface{}{
		"to": s.cfg.ShadowAddress,
		"data": note.Proof,
		"chainId": bundle.ChainID,
	})
}

func noteStatusResponse(noteIndex int, status chainrpc.NullifierStatus, cached bool) map[string]interface{} {
	return map[string]interface{}{
		"noteIndex": noteIndex,
		"status": status.String(),
		"cached": cached,
	}
}
