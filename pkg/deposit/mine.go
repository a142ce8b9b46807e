package deposit

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

// NoteInput is the request shape for a single note when mining a new
// deposit.
type NoteInput struct {
	Recipient string
	Amount string
	Label string
}

// MineResult carries the outcome of mining a new deposit: the descriptor
// ready to persist, its canonical filename, and the derived target address.
type MineResult struct {
	Descriptor *Descriptor
	Filename string
	TargetAddress [20]byte
	TotalAmount string
	Iterations uint64
}

// maxPoWIterations bounds the legacy 24-bit PoW loop so a pathological
// secret space can't hang deposit creation forever.
const maxPoWIterations = 1 << 28

// Mine synthesizes a cryptographically random secret, derives the target
// address, and builds a ready-to-persist descriptor. When requirePoW is
// true, it re-enables the historical v1 gate: the secret is retried until
// sha256(notesHash || secret)[29..32] == 0, a legacy addition that is
// disabled by default in v2.
func Mine(chainID uint64, notes []NoteInput, comment string, requirePoW bool) (*MineResult, error) {
	if len(notes) == 0 {
		return nil, ErrNoNotes
	}
	if len(notes) > claimcore.MaxNotes {
		return nil, ErrTooManyNotes
	}

	descNotes := make([]Note, len(notes))
	var amountPtrs [claimcore.MaxNotes]*[16]byte
	var recipientHashes [claimcore.MaxNotes][32]byte
	amounts := make([][16]byte, len(notes))
	total := new(big.Int)

	for i, n := range notes {
		recipient, err := decodeAddress(n.Recipient)
		if err != nil {
			return nil, fmt.Errorf("%w: note %d: %v", ErrInvalidRecipient, i, err)
		}
		amt, ok := parseDecimal128(n.Amount)
		if !ok {
			return nil, fmt.Errorf("%w: note %d", ErrZeroAmount, i)
		}
		amounts[i] = amt
		amountPtrs[i] = &amounts[i]
		recipientHashes[i] = claimcore.RecipientHash(recipient)
		if parsed, ok := new(big.Int).SetString(n.Amount, 10); ok {
			total.Add(total, parsed)
		}

		descNotes[i] = Note{
			Recipient: hexutil.Encode(recipient[:]),
			Amount: n.Amount,
			Label: n.Label,
		}
	}

	notesHash := claimcore.NotesHash(len(notes), amountPtrs, recipientHashes)

	var secret [32]byte
	var iterations uint64 = 1
	if err := randomSecret(&secret); err != nil {
		return nil, fmt.Errorf("deposit: generating secret: %w", err)
	}
	if requirePoW {
		for !satisfiesPoW(notesHash, secret) {
			iterations++
			if iterations > maxPoWIterations {
				return nil, fmt.Errorf("deposit: PoW gate exceeded %d iterations", maxPoWIterations)
			}
			if err := randomSecret(&secret); err != nil {
				return nil, fmt.Errorf("deposit: generating secret: %w", err)
			}
		}
	}

	targetAddr := claimcore.TargetAddress(secret, chainID, notesHash)
	targetHex := hexutil.Encode(targetAddr[:])

	desc := &Descriptor{
		Version: CurrentVersion,
		ChainID: fmt.Sprintf("%d", chainID),
		Secret: hexutil.Encode(secret[:]),
		Notes: descNotes,
		TargetAddress: &targetHex,
		Comment: comment,
	}

	return &MineResult{
		Descriptor: desc,
		Filename: Filename(targetAddr, time.Now()),
		TargetAddress: targetAddr,
		TotalAmount: total.String(),
		Iterations: iterations,
	}, nil
}

func randomSecret(out *[32]byte) error {
	_, err := rand.Read(out[:])
	return err
}

// satisfiesPoW implements the historical v1 24-bit gate: sha256(notesHash ||
// secret) must have its last 3 bytes equal to zero.
func satisfiesPoW(notesHash, secret [32]byte) bool {
	h := sha256.New()
	h.Write(notesHash[:])
	h.Write(secret[:])
	digest := h.Sum(nil)
	return digest[29] == 0 && digest[30] == 0 && digest[31] == 0
}

// parseDecimal128 parses a decimal string into a big-endian 128-bit buffer,
// rejecting zero, negative, or out-of-range values.
func parseDecimal128(s string) ([16]byte, bool) {
	var out [16]byte
	amt, ok := new(big.Int).SetString(s, 10)
	if !ok || amt.Sign() <= 0 {
		return out, false
	}
	b := amt.Bytes()
	if len(b) > 16 {
		return out, false
	}
	copy(out[16-len(b):], b)
	return out, true
}
