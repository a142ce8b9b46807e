package deposit

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

// Derived holds every value derived from a Descriptor: the nullifiers (one
// per note), the notes hash, the target address, and the total amount.
type Derived struct {
	ChainID uint64
	Secret [32]byte
	TargetAddress [20]byte
	NotesHash [32]byte
	TotalAmount *big.Int
	Nullifiers [][32]byte
	Amounts [][16]byte
	Recipients [][20]byte
}

// Derive computes every derived value for d and checks that any persisted
// targetAddress matches.
func Derive(d *Descriptor) (*Derived, error) {
	chainID, err := strconv.ParseUint(d.ChainID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("deposit: invalid chainId %q: %w", d.ChainID, err)
	}
	secret, err := decodeSecret(d.Secret)
	if err != nil {
		return nil, fmt.Errorf("deposit: invalid secret: %w", err)
	}

	count := len(d.Notes)
	var amountPtrs [claimcore.MaxNotes]*[16]byte
	var recipientHashes [claimcore.MaxNotes][32]byte
	amounts := make([][16]byte, count)
	recipients := make([][20]byte, count)
	total := new(big.Int)

	for i, n := range d.Notes {
		amt, ok := new(big.Int).SetString(n.Amount, 10)
		if !ok {
			return nil, fmt.Errorf("deposit: invalid amount %q at note %d", n.Amount, i)
		}
		total.Add(total, amt)

		var amt16 [16]byte
		if err := bigIntTo16(amt, &amt16); err != nil {
			return nil, fmt.Errorf("deposit: note %d amount: %w", i, err)
		}
		amounts[i] = amt16

		recipient, err := decodeAddress(n.Recipient)
		if err != nil {
			return nil, fmt.Errorf("deposit: note %d recipient: %w", i, err)
		}
		recipients[i] = recipient

		amountPtrs[i] = &amounts[i]
		recipientHashes[i] = claimcore.RecipientHash(recipient)
	}

	notesHash := claimcore.NotesHash(count, amountPtrs, recipientHashes)
	targetAddr := claimcore.TargetAddress(secret, chainID, notesHash)

	if d.TargetAddress != nil {
		persisted, err := decodeAddress(*d.TargetAddress)
		if err != nil {
			return nil, fmt.Errorf("deposit: invalid persisted targetAddress: %w", err)
		}
		if persisted != targetAddr {
			return nil, ErrTargetAddressStale
		}
	}

	nullifiers := make([][32]byte, count)
	for i := range d.Notes {
		nullifiers[i] = claimcore.Nullifier(secret, chainID, uint32(i))
	}

	return &Derived{
		ChainID: chainID,
		Secret: secret,
		TargetAddress: targetAddr,
		NotesHash: notesHash,
		TotalAmount: total,
		Nullifiers: nullifiers,
		Amounts: amounts,
		Recipients: recipients,
	}, nil
}

// TargetAddressHex renders the derived target address with a 0x prefix.
func (d *Derived) TargetAddressHex() string {
	return hexutil.Encode(d.TargetAddress[:])
}

// bigIntTo16 writes v into a 16-byte big-endian buffer, failing if it does
// not fit (amounts are defined as 128-bit wide).
func bigIntTo16(v *big.Int, out *[16]byte) error {
	if v.Sign() < 0 {
		return fmt.Errorf("negative amount")
	}
	b := v.Bytes()
	if len(b) > 16 {
		return fmt.Errorf("amount exceeds 128 bits")
	}
	copy(out[16-len(b):], b)
	return nil
}
