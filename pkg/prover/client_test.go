package prover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

func TestProveRoundTripsSeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req proveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.ReceiptKind != "groth16" {
			t.Fatalf("got receiptKind %q want groth16", req.ReceiptKind)
		}
		if req.NoteCount != 1 {
			t.Fatalf("got noteCount %d want 1", req.NoteCount)
		}
		json.NewEncoder(w).Encode(proveResponse{Seal: "0x010203"})
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL, ReceiptKind: "groth16"})
	witness := claimcore.ClaimWitness{
		NoteCount:  1,
		ProofDepth: 1,
		ProofNodes: [][]byte{{0xaa}},
	}

	seal, err := client.Prove(context.Background(), witness)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if len(seal) != 3 || seal[0] != 0x01 || seal[2] != 0x03 {
		t.Fatalf("got seal %x want 010203", seal)
	}
}

func TestProveSurfacesServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(proveResponse{Error: "prover overloaded"})
	}))
	defer srv.Close()

	client := New(Config{Endpoint: srv.URL})
	_, err := client.Prove(context.Background(), claimcore.ClaimWitness{})
	if err == nil {
		t.Fatal("expected an error from a failing prover")
	}
}
