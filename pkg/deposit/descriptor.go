// Package deposit implements the deposit descriptor schema and the
// derivation of target address, nullifiers, and notes hash from it.
package deposit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

// CurrentVersion is the only descriptor version new deposits are written in.
const CurrentVersion = "v2"

var (
	ErrUnsupportedVersion = errors.New("deposit: unsupported version")
	ErrNoNotes = errors.New("deposit: at least one note is required")
	ErrTooManyNotes = errors.New("deposit: too many notes")
	ErrZeroAmount = errors.New("deposit: note amount must be > 0")
	ErrTargetAddressStale = errors.New("deposit: targetAddress does not match derivation")
	ErrInvalidSecretLength = errors.New("deposit: secret must be 32 bytes")
	ErrInvalidRecipient = errors.New("deposit: recipient must be a 20-byte address")
)

// Note is one sub-note of a deposit.
type Note struct {
	Recipient string `json:"recipient"` // 20-byte hex
	Amount string `json:"amount"` // decimal string
	Label string `json:"label,omitempty"`
}

// Descriptor is the on-disk deposit schema.
type Descriptor struct {
	Version string `json:"version"`
	ChainID string `json:"chainId"`
	Secret string `json:"secret"`
	Notes []Note `json:"notes"`
	TargetAddress *string `json:"targetAddress,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Load reads and validates a deposit file from path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deposit: reading %s: %w", path, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("deposit: parsing %s: %w", path, err)
	}
	if d.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, d.Version)
	}
	if err := d.validateShape(); err != nil {
		return nil, err
	}
	return &d, nil
}

// validateShape checks the structural invariants that do not require
// cryptographic derivation: note count bounds and positive amounts.
func (d *Descriptor) validateShape() error {
	if len(d.Notes) == 0 {
		return ErrNoNotes
	}
	if len(d.Notes) > claimcore.MaxNotes {
		return ErrTooManyNotes
	}
	for i, n := range d.Notes {
		amt, ok := new(big.Int).SetString(n.Amount, 10)
		if !ok || amt.Sign() <= 0 {
			return fmt.Errorf("%w: note %d", ErrZeroAmount, i)
		}
		if _, err := decodeAddress(n.Recipient); err != nil {
			return fmt.Errorf("%w: note %d: %v", ErrInvalidRecipient, i, err)
		}
	}
	return nil
}

func decodeAddress(hexStr string) ([20]byte, error) {
	var out [20]byte
	b, err := hexutil.Decode(ensure0x(hexStr))
	if err != nil {
		return out, err
	}
	if len(b) != 20 {
		return out, fmt.Errorf("expected 20 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeSecret(hexStr string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(ensure0x(hexStr))
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, ErrInvalidSecretLength
	}
	copy(out[:], b)
	return out, nil
}

func ensure0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s
	}
	return "0x" + s
}

// Save writes the descriptor as pretty-printed UTF-8 JSON.
func Save(path string, d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", " ")
	if err != nil {
		return fmt.Errorf("deposit: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("deposit: writing %s: %w", path, err)
	}
	return nil
}
