// Package workspace scans a directory of deposit and proof files, correlates
// them by stem, and exposes a typed index.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/taikoxyz/shadow/pkg/deposit"
	"github.com/taikoxyz/shadow/pkg/pipeline"
)

// DepositEntry is one deposit augmented with its derived fields and, if
// present, its newest correlated proof filename.
type DepositEntry struct {
	Filename string `json:"filename"`
	Stem string `json:"stem"`
	ChainID uint64 `json:"chainId"`
	TargetAddress string `json:"targetAddress"`
	TotalAmount string `json:"totalAmount"`
	Nullifiers []string `json:"nullifiers"`
	Comment string `json:"comment,omitempty"`
	ProofFilename string `json:"proofFilename,omitempty"`
	ProofValid bool `json:"proofValid"`
}

// Index is the scanner's output.
type Index struct {
	ScanID uuid.UUID `json:"scanId"`
	Deposits []DepositEntry `json:"deposits"`
}

// Scan walks dir, correlating deposit and proof files by stem. Invalid
// deposits are skipped without aborting the scan; orphan proofs (no
// matching deposit) are ignored.
func Scan(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("workspace: reading %s: %w", dir, err)
	}

	var depositNames []string
	proofsByStem := make(map[string][]string)

	for _, e := range entries {
		name := e.Name()
		switch {
		case deposit.IsProofFilename(name):
			stem := proofStem(name)
			proofsByStem[stem] = append(proofsByStem[stem], name)
		case deposit.IsDepositFilename(name):
			depositNames = append(depositNames, name)
		}
	}

	sort.Strings(depositNames)

	idx := &Index{ScanID: uuid.New()}
	for _, name := range depositNames {
		entry, ok := buildEntry(dir, name, proofsByStem)
		if !ok {
			continue
		}
		idx.Deposits = append(idx.Deposits, entry)
	}
	return idx, nil
}

// proofStem returns the deposit stem a proof filename correlates with:
// strip the trailing ".proof-<timestamp>.json" suffix.
func proofStem(proofFilename string) string {
	idx := indexOfProofMarker(proofFilename)
	if idx < 0 {
		return proofFilename
	}
	return proofFilename[:idx]
}

func indexOfProofMarker(s string) int {
	const marker = ".proof-"
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return i
		}
	}
	return -1
}

func buildEntry(dir, filename string, proofsByStem map[string][]string) (DepositEntry, bool) {
	d, err := deposit.Load(filepath.Join(dir, filename))
	if err != nil {
		return DepositEntry{}, false
	}
	derived, err := deposit.Derive(d)
	if err != nil {
		return DepositEntry{}, false
	}

	stem := deposit.Stem(filename)
	nullifiers := make([]string, len(derived.Nullifiers))
	for i, n := range derived.Nullifiers {
		nullifiers[i] = hexutil.Encode(n[:])
	}

	entry := DepositEntry{
		Filename: filename,
		Stem: stem,
		ChainID: derived.ChainID,
		TargetAddress: derived.TargetAddressHex(),
		TotalAmount: derived.TotalAmount.String(),
		Nullifiers: nullifiers,
		Comment: d.Comment,
	}

	if proofs := proofsByStem[stem]; len(proofs) > 0 {
		newest := newestProof(proofs)
		entry.ProofFilename = newest
		entry.ProofValid = isValidProof(dir, newest)
	}

	return entry, true
}

// newestProof returns the lexicographically greatest proof filename, which
// is also the chronologically newest one.
func newestProof(proofs []string) string {
	newest := proofs[0]
	for _, p := range proofs[1:] {
		if p > newest {
			newest = p
		}
	}
	return newest
}

// isValidProof reports whether a proof file parses, has a non-empty notes
// array, and its first entry carries a non-empty seal or proof field — the
// contract that distinguishes real proofs from dev/empty ones.
func isValidProof(dir, filename string) bool {
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return false
	}
	var bundle pipeline.BundledProofArtifact
	if err := json.Unmarshal(data, &bundle); err != nil {
		return false
	}
	if len(bundle.Notes) == 0 {
		return false
	}
	first := bundle.Notes[0]
	return first.Seal != "" || first.Proof != ""
}
