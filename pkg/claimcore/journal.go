package claimcore

import "encoding/binary"

// JournalVersion distinguishes the packed layouts a reader may encounter.
// V2 is the only layout new proofs are written in; V1 is accepted only when
// reading historical artifacts.
type JournalVersion uint8

const (
	JournalV2 JournalVersion = iota // 116 bytes, current
	JournalV1 // 152 bytes, historical only
)

const (
	journalV2Len = 116
	journalV1Len = 152
)

// ClaimJournal is the public output of the claim evaluator.
type ClaimJournal struct {
	BlockNumber uint64
	BlockHash [32]byte
	ChainID uint64
	Amount [16]byte
	Recipient [20]byte
	Nullifier [32]byte

	// V1-only fields, zero on a V2 journal.
	StateRoot [32]byte
	NoteIndex uint32
	PowDigest [32]byte
}

// Pack writes the current (V2) 116-byte little-endian layout.
// Scalar fields are little-endian (Amount is held big-endian in the struct
// and byte-reversed on the wire); addresses and 32-byte hashes are
// byte-copied verbatim.
func (j ClaimJournal) Pack() []byte {
	buf := make([]byte, journalV2Len)
	binary.LittleEndian.PutUint64(buf[0:8], j.BlockNumber)
	copy(buf[8:40], j.BlockHash[:])
	binary.LittleEndian.PutUint64(buf[40:48], j.ChainID)
	for i := 0; i < 16; i++ {
		buf[48+i] = j.Amount[15-i]
	}
	copy(buf[64:84], j.Recipient[:])
	copy(buf[84:116], j.Nullifier[:])
	return buf
}

// Unpack parses the current 116-byte layout. Any other length is
// ErrInvalidLength.
func Unpack(b []byte) (ClaimJournal, ErrTag) {
	if len(b) != journalV2Len {
		return ClaimJournal{}, ErrInvalidLength
	}
	var j ClaimJournal
	j.BlockNumber = binary.LittleEndian.Uint64(b[0:8])
	copy(j.BlockHash[:], b[8:40])
	j.ChainID = binary.LittleEndian.Uint64(b[40:48])
	for i := 0; i < 16; i++ {
		j.Amount[i] = b[63-i]
	}
	copy(j.Recipient[:], b[64:84])
	copy(j.Nullifier[:], b[84:116])
	return j, ErrNone
}

// UnpackVersioned accepts either the 116-byte V2 layout or the historical
// 152-byte V1 layout (stateRoot and noteIndex appended), tagging the
// result with which one was read. Only used by readers of historical
// artifacts — new writes always go through Pack.
func UnpackVersioned(b []byte) (ClaimJournal, JournalVersion, ErrTag) {
	switch len(b) {
	case journalV2Len:
		j, tag := Unpack(b)
		return j, JournalV2, tag
	case journalV1Len:
		j, tag := unpackV1(b)
		return j, JournalV1, tag
	default:
		return ClaimJournal{}, JournalV2, ErrInvalidLength
	}
}

// unpackV1 decodes the historical 152-byte layout: the V2 fields at
// [0:116], then [116:148] stateRoot, [148:152] noteIndex (little-endian
// u32). 116+32+4 already accounts for the documented 152 bytes; powDigest
// is not a separately packed field in this layout (the mining-time PoW gate
// it names affected secret generation, not the journal's wire shape), so
// ClaimJournal.PowDigest stays zero on a V1 read.
func unpackV1(b []byte) (ClaimJournal, ErrTag) {
	j, tag := Unpack(b[:journalV2Len])
	if tag != ErrNone {
		return ClaimJournal{}, tag
	}
	copy(j.StateRoot[:], b[116:148])
	j.NoteIndex = binary.LittleEndian.Uint32(b[148:152])
	return j, ErrNone
}
