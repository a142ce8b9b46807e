package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taikoxyz/shadow/pkg/deposit"
	"github.com/taikoxyz/shadow/pkg/pipeline"
)

func TestHandleNoteStatusWithoutClientReportsUnknown(t *testing.T) {
	dir := t.TempDir()
	stem := mineTestDeposit(t, dir, 167013)

	hub := NewHub(nil)
	srv := New(Config{Workspace: dir, Hub: hub, Queue: queueForTest(hub)})
	httpSrv := httptest.NewServer(srv.Routes())
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/api/deposits/" + stem + "/notes/0/status")
	if err != nil {
		t.Fatalf("GET note status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d want 200", resp.StatusCode)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["status"] != "unknown" {
		t.Fatalf("got status %v want unknown", got["status"])
	}
}

func TestHandleNoteStatusRejectsOutOfRangeIndex(t *testing.T) {
	dir := t.TempDir()
	stem := mineTestDeposit(t, dir, 167013)

	hub := NewHub(nil)
	srv := New(Config{Workspace: dir, Hub: hub, Queue: queueForTest(hub)})
	httpSrv := httptest.NewServer(srv.Routes())
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/api/deposits/" + stem + "/notes/5/status")
	if err != nil {
		t.Fatalf("GET note status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d want 400", resp.StatusCode)
	}
}

func TestHandleNoteClaimTxReturnsEncodedCalldata(t *testing.T) {
	dir := t.TempDir()
	result, err := deposit.Mine(167013, []deposit.NoteInput{
		{Recipient: "0x550000000000000000000000000000000000005a", Amount: "1000"},
	}, "", false)
	if err != nil {
		t.Fatalf("mining deposit: %v", err)
	}
	if err := deposit.Save(filepath.Join(dir, result.Filename), result.Descriptor); err != nil {
		t.Fatalf("saving deposit: %v", err)
	}
	stem := deposit.Stem(result.Filename)

	proofName := deposit.ProofFilename(stem, time.Now())
	bundle := pipeline.BundledProofArtifact{
		Version:     deposit.CurrentVersion,
		DepositFile: result.Filename,
		BlockNumber: 100,
		ChainID:     167013,
		Notes: []pipeline.NoteArtifact{
			{NoteIndex: 0, Amount: "1000", Recipient: "0x550000000000000000000000000000000000005a", Seal: "0x01", Proof: "0xabcdef"},
		},
	}
	data, _ := json.MarshalIndent(bundle, "", "  ")
	if err := os.WriteFile(filepath.Join(dir, proofName), data, 0o644); err != nil {
		t.Fatalf("writing proof fixture: %v", err)
	}

	hub := NewHub(nil)
	srv := New(Config{Workspace: dir, ShadowAddress: "0x00000000000000000000000000000000000099", Hub: hub, Queue: queueForTest(hub)})
	httpSrv := httptest.NewServer(srv.Routes())
	defer httpSrv.Close()

	resp, err := http.Get(httpSrv.URL + "/api/deposits/" + stem + "/notes/0/claim-tx")
	if err != nil {
		t.Fatalf("GET claim-tx: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d want 200", resp.StatusCode)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got["data"] != "0xabcdef" {
		t.Fatalf("got data %v want 0xabcdef", got["data"])
	}
	if got["to"] != "0x00000000000000000000000000000000000099" {
		t.Fatalf("got to %v want the configured shadow address", got["to"])
	}
}
