// Package pipeline orchestrates a single proof job: fetch chain data once,
// prove each note sequentially, and persist one bundled proof artifact.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/chainrpc"
	"github.com/taikoxyz/shadow/pkg/claimcore"
	"github.com/taikoxyz/shadow/pkg/deposit"
)

// ChainClient is the narrow slice of chainrpc.Client the pipeline depends
// on, so tests can substitute a stub.
type ChainClient interface {
	ChainID(ctx context.Context) (uint64, error)
	LatestBlock(ctx context.Context) (*chainrpc.Block, error)
	AccountProofAt(ctx context.Context, address [20]byte, blockNumber uint64) (*chainrpc.AccountProof, error)
}

// Prover is the external zero-knowledge proving engine; the pipeline only
// knows how to invoke it and collect a seal.
type Prover interface {
	Prove(ctx context.Context, witness claimcore.ClaimWitness) (seal []byte, err error)
}

// Progress is the narrow slice of queue.Queue the pipeline depends on.
type Progress interface {
	UpdateProgress(currentNote int, message, stage string, blockNumber, chainID uint64, elapsedSecs, noteElapsedSecs float64)
}

// NoteObserver receives the wall-clock duration of each proved note, for
// callers that want to record it (e.g. as a metrics histogram) independent
// of Progress's queue-shaped reporting. A nil NoteObserver is never called.
type NoteObserver interface {
	ObserveNote(d time.Duration)
}

// NoteArtifact is one note's entry in a BundledProofArtifact.
type NoteArtifact struct {
	NoteIndex int `json:"noteIndex"`
	Amount string `json:"amount"`
	Recipient string `json:"recipient"`
	Nullifier string `json:"nullifier"`
	Seal string `json:"seal"`
	Journal string `json:"journal"`
	Proof string `json:"proof"`
	ReceiptBase64 string `json:"receiptBase64,omitempty"`
}

// BundledProofArtifact is the persisted per-job output.
type BundledProofArtifact struct {
	Version string `json:"version"`
	DepositFile string `json:"depositFile"`
	BlockNumber uint64 `json:"blockNumber"`
	BlockHash string `json:"blockHash"`
	ChainID uint64 `json:"chainId"`
	Notes []NoteArtifact `json:"notes"`
}

// ErrCancelled is returned when the cancel channel fires before the job
// completes. Cancellation is a first-class outcome, not a pipeline error.
var ErrCancelled = fmt.Errorf("pipeline: cancelled")

// Run executes one proof job for depositFile under workspace, fetching
// chain data once, proving every note in increasing index order, and
// writing a bundled proof artifact. cancel is polled before each note and
// raced against each prover invocation. observer may be nil.
func Run(ctx context.Context, workspace, depositFile string, client ChainClient, prover Prover, progress Progress, observer NoteObserver, cancel <-chan struct{}) (proofFile string, noteIndex int, err error) {
	jobStart := time.Now()

	d, err := deposit.Load(filepath.Join(workspace, depositFile))
	if err != nil {
		return "", 0, fmt.Errorf("deposit: %w", err)
	}
	derived, err := deposit.Derive(d)
	if err != nil {
		return "", 0, fmt.Errorf("deposit: %w", err)
	}

	rpcChainID, err := client.ChainID(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("rpc: chainId: %w", err)
	}
	if rpcChainID != derived.ChainID {
		return "", 0, fmt.Errorf("rpc: chain id mismatch: deposit wants %d, rpc reports %d", derived.ChainID, rpcChainID)
	}

	rpcStart := time.Now()
	block, err := client.LatestBlock(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("rpc: latestBlock: %w", err)
	}
	progress.UpdateProgress(0, "fetched latest block", "rpc_block", block.Number, derived.ChainID, time.Since(jobStart).Seconds(), time.Since(rpcStart).Seconds())

	proofStart := time.Now()
	acctProof, err := client.AccountProofAt(ctx, derived.TargetAddress, block.Number)
	if err != nil {
		return "", 0, fmt.Errorf("rpc: accountProof: %w", err)
	}
	progress.UpdateProgress(0, "fetched account proof", "rpc_proof", block.Number, derived.ChainID, time.Since(jobStart).Seconds(), time.Since(proofStart).Seconds())

	noteCount := len(d.Notes)
	var recipientHashes [claimcore.MaxNotes][32]byte
	var amounts [claimcore.MaxNotes][16]byte
	for i := 0; i < noteCount; i++ {
		amounts[i] = derived.Amounts[i]
		recipientHashes[i] = claimcore.RecipientHash(derived.Recipients[i])
	}
	proofNodeLengths := make([]uint32, len(acctProof.ProofNodes))
	for i, n := range acctProof.ProofNodes {
		proofNodeLengths[i] = uint32(len(n))
	}

	notes := make([]NoteArtifact, 0, noteCount)
	for i := 0; i < noteCount; i++ {
		select {
		case <-cancel:
			return "", i, ErrCancelled
		default:
		}

		noteStart := time.Now()
		witness := claimcore.ClaimWitness{
			BlockNumber: block.Number,
			BlockHash: block.Hash,
			ChainID: derived.ChainID,
			NoteIndex: uint32(i),
			Amount: amounts[i],
			Recipient: derived.Recipients[i],
			Secret: derived.Secret,
			NoteCount: uint32(noteCount),
			Amounts: amounts,
			RecipientHash: recipientHashes,
			BlockHeaderRLP: block.HeaderRLP,
			ProofDepth: uint32(len(acctProof.ProofNodes)),
			ProofNodes: acctProof.ProofNodes,
			ProofNodeLengths: proofNodeLengths,
		}

		journal, tag := claimcore.EvaluateClaim(witness)
		if !tag.Ok() {
			return "", i, fmt.Errorf("note %d: %s", i, tag.String())
		}

		seal, err := proveWithCancel(ctx, prover, witness, cancel)
		if err != nil {
			if err == ErrCancelled {
				return "", i, ErrCancelled
			}
			return "", i, fmt.Errorf("note %d: prover: %w", i, err)
		}

		calldata, err := ClaimCalldata(journal, seal)
		if err != nil {
			return "", i, fmt.Errorf("note %d: calldata: %w", i, err)
		}

		notes = append(notes, NoteArtifact{
			NoteIndex: i,
			Amount: new(big.Int).SetBytes(amounts[i][:]).String(),
			Recipient: hexutil.Encode(derived.Recipients[i][:]),
			Nullifier: hexutil.Encode(derived.Nullifiers[i][:]),
			Seal: hexutil.Encode(seal),
			Journal: hexutil.Encode(journal.Pack()),
			Proof: hexutil.Encode(calldata),
		})

		noteElapsed := time.Since(noteStart)
		progress.UpdateProgress(i+1, fmt.Sprintf("proved note %d", i), "prove", block.Number, derived.ChainID, time.Since(jobStart).Seconds(), noteElapsed.Seconds())
		if observer != nil {
			observer.ObserveNote(noteElapsed)
		}
	}

	stem := deposit.Stem(depositFile)
	now := time.Now()
	proofName := deposit.ProofFilename(stem, now)
	if err := backupExistingProof(workspace, stem); err != nil {
		return "", noteCount, fmt.Errorf("backing up previous proof: %w", err)
	}

	bundle := BundledProofArtifact{
		Version: deposit.CurrentVersion,
		DepositFile: depositFile,
		BlockNumber: block.Number,
		BlockHash: hexutil.Encode(block.Hash[:]),
		ChainID: derived.ChainID,
		Notes: notes,
	}
	if err := writeBundle(workspace, proofName, bundle); err != nil {
		return "", noteCount, fmt.Errorf("writing proof artifact: %w", err)
	}

	return proofName, noteCount, nil
}

// proveWithCancel races the prover's completion against cancel, abandoning
// the in-flight call if cancel fires first.
func proveWithCancel(ctx context.Context, prover Prover, witness claimcore.ClaimWitness, cancel <-chan struct{}) ([]byte, error) {
	type result struct {
		seal []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		seal, err := prover.Prove(ctx, witness)
		done <- result{seal, err}
	}()

	select {
	case <-cancel:
		return nil, ErrCancelled
	case r := <-done:
		return r.seal, r.err
	}
}

// backupExistingProof renames the current newest proof file for stem (if
// any) to the same name with a .bkup extension, before a new proof for the
// same deposit is written.
func backupExistingProof(workspace, stem string) error {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return fmt.Errorf("reading workspace: %w", err)
	}
	var newest string
	for _, e := range entries {
		name := e.Name()
		if !deposit.IsProofFilename(name) {
			continue
		}
		if !hasDepositStemPrefix(name, stem) {
			continue
		}
		if name > newest {
			newest = name
		}
	}
	if newest == "" {
		return nil
	}
	src := filepath.Join(workspace, newest)
	dst := filepath.Join(workspace, newest+".bkup")
	return os.Rename(src, dst)
}

func hasDepositStemPrefix(proofFilename, depositStem string) bool {
	prefix := depositStem + ".proof-"
	return len(proofFilename) > len(prefix) && proofFilename[:len(prefix)] == prefix
}

func writeBundle(workspace, filename string, bundle BundledProofArtifact) error {
	data, err := json.MarshalIndent(bundle, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workspace, filename), data, 0o644)
}

