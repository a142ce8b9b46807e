package deposit

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "20060102T150405"

// Filename builds the canonical deposit filename:
// deposit-<first4addr>-<last4addr>-<YYYYMMDDTHHMMSS>.json.
func Filename(targetAddress [20]byte, at time.Time) string {
	h := hex.EncodeToString(targetAddress[:])
	first4 := h[:4]
	last4 := h[len(h)-4:]
	return fmt.Sprintf("deposit-%s-%s-%s.json", first4, last4, at.UTC().Format(timestampLayout))
}

// Stem strips the .json extension from a deposit filename.
func Stem(filename string) string {
	return strings.TrimSuffix(filename, ".json")
}

// ProofFilename builds <deposit-stem>.proof-<YYYYMMDDTHHMMSS>.json. Because
// the timestamp is fixed-width, lexicographic order over proof filenames for
// the same stem matches chronological order.
func ProofFilename(depositStem string, at time.Time) string {
	return fmt.Sprintf("%s.proof-%s.json", depositStem, at.UTC().Format(timestampLayout))
}

// IsDepositFilename reports whether name matches the deposit naming pattern
// and is not itself a proof file.
func IsDepositFilename(name string) bool {
	return strings.HasPrefix(name, "deposit-") && strings.HasSuffix(name, ".json") && !strings.Contains(name, ".proof")
}

// IsProofFilename reports whether name matches the proof naming pattern.
func IsProofFilename(name string) bool {
	return strings.HasPrefix(name, "deposit-") && strings.HasSuffix(name, ".json") && strings.Contains(name, ".proof-")
}
