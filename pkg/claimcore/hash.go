package claimcore

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// MaxNotes bounds the number of sub-notes a single deposit may carry.
const MaxNotes = 5

// Historical and current total-amount caps. The
// current v2 path enforces MaxTotalWeiDecimal; MaxTotalWeiV1Decimal is kept only as a
// documented alternative, not wired into any default.
const (
	MaxTotalWeiDecimal = "32000000000000000000"
	MaxTotalWeiV1Decimal = "8000000000000000000"
)

const (
	MaxProofDepth = 64
	MaxNodeBytes = 4096
)

// magic labels, ASCII tags zero-padded to 32 bytes.
var (
	magicRecipient = pad32Label("shadow.recipient.v1")
	magicAddress = pad32Label("shadow.address.v1")
	magicNullifier = pad32Label("shadow.nullifier.v1")
	magicPoW = pad32Label("shadow.pow.v1") // v1 only
)

func pad32Label(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

// sha256h runs a parts-concatenated SHA-256 over fixed preimage layouts.
func sha256h(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// be32 left-pads n to a 32-byte big-endian buffer.
func be32(n uint64) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], n)
	return out
}

// leftPad32 left-pads b to 32 bytes, truncating from the left if longer
// (mirrors the evaluator's defensive width handling for recipient bytes
// that are already exactly 20 bytes in practice).
func leftPad32(b []byte) [32]byte {
	var out [32]byte
	if len(b) >= 32 {
		copy(out[:], b[len(b)-32:])
		return out
	}
	copy(out[32-len(b):], b)
	return out
}

// RecipientHash implements recipientHash(r) = SHA256(pad32(MAGIC_RECIPIENT) || leftPad32(r)).
func RecipientHash(recipient [20]byte) [32]byte {
	padded := leftPad32(recipient[:])
	return sha256h(magicRecipient[:], padded[:])
}

// TargetAddress implements
// targetAddress(secret, chainId, notesHash) = low20(SHA256(pad32(MAGIC_ADDRESS) || be32(chainId) || secret || notesHash)).
func TargetAddress(secret [32]byte, chainID uint64, notesHash [32]byte) [20]byte {
	cid := be32(chainID)
	digest := sha256h(magicAddress[:], cid[:], secret[:], notesHash[:])
	var out [20]byte
	copy(out[:], digest[12:])
	return out
}

// Nullifier implements nullifier(secret, chainId, noteIndex) = SHA256(pad32(MAGIC_NULLIFIER) || be32(chainId) || secret || be32(noteIndex)).
func Nullifier(secret [32]byte, chainID uint64, noteIndex uint32) [32]byte {
	cid := be32(chainID)
	idx := be32(uint64(noteIndex))
	return sha256h(magicNullifier[:], cid[:], secret[:], idx[:])
}

// NotesHash implements notesHash(count, amounts[], recipientHashes[]), zero-padded
// to MAX_NOTES*64 bytes. Unused slots contribute 0x00 — this padding is part of
// the hash contract, not an optimization.
func NotesHash(count int, amounts [MaxNotes]*[16]byte, recipientHashes [MaxNotes][32]byte) [32]byte {
	buf := make([]byte, MaxNotes*64)
	for i := 0; i < count; i++ {
		off := i * 64
		var amt16 [16]byte
		if amounts[i] != nil {
			amt16 = *amounts[i]
		}
		amt32 := amount16ToBE32(amt16)
		copy(buf[off:off+32], amt32[:])
		copy(buf[off+32:off+64], recipientHashes[i][:])
	}
	return sha256h(buf)
}

// amount16ToBE32 widens a 128-bit big-endian amount to the 32-byte
// big-endian slot the notes-hash preimage uses per note").
func amount16ToBE32(amt [16]byte) [32]byte {
	var out [32]byte
	copy(out[16:], amt[:])
	return out
}

// Keccak256Sum is the blockchain-interop hash (state root, key hashing,
// header hash, node references). All interop hashing goes through
// go-ethereum's crypto package rather than a second hand-rolled
// implementation.
func Keccak256Sum(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(data...))
	return out
}

// BalanceGte reports whether balance >= total: true iff the high 128 bits of
// balance are non-zero, or the low 128 bits (big-endian) are >= total.
func BalanceGte(balance [32]byte, total [16]byte) bool {
	for _, b := range balance[:16] {
		if b != 0 {
			return true
		}
	}
	var low [16]byte
	copy(low[:], balance[16:])
	return compare128(low, total) >= 0
}

// compare128 compares two big-endian 128-bit values, returning -1, 0, 1.
func compare128(a, b [16]byte) int {
	for i := 0; i < 16; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
