package claimcore

import "testing"

func TestJournalRoundTrip(t *testing.T) {
	var j ClaimJournal
	j.BlockNumber = 4_739_555
	for i := range j.BlockHash {
		j.BlockHash[i] = byte(i)
	}
	j.ChainID = 167013
	j.Amount[15] = 0x10
	for i := range j.Recipient {
		j.Recipient[i] = byte(0xa0 + i)
	}
	for i := range j.Nullifier {
		j.Nullifier[i] = byte(0xb0 + i)
	}

	packed := j.Pack()
	if len(packed) != 116 {
		t.Fatalf("expected 116 bytes, got %d", len(packed))
	}
	got, tag := Unpack(packed)
	if tag != ErrNone {
		t.Fatalf("unpack failed: %v", tag)
	}
	if got != j {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, j)
	}
}

func TestUnpackInvalidLength(t *testing.T) {
	for _, n := range []int{0, 1, 115, 117, 200} {
		_, tag := Unpack(make([]byte, n))
		if tag != ErrInvalidLength {
			t.Fatalf("length %d: expected ErrInvalidLength, got %v", n, tag)
		}
	}
}

func TestUnpackVersionedReadsV1(t *testing.T) {
	var j ClaimJournal
	j.BlockNumber = 1
	j.ChainID = 2
	packed := j.Pack()
	v1 := make([]byte, 152)
	copy(v1, packed)
	v1[116] = 0xaa // stateRoot[0]
	v1[148] = 0x07 // noteIndex little-endian low byte

	got, version, tag := UnpackVersioned(v1)
	if tag != ErrNone {
		t.Fatalf("unpack v1 failed: %v", tag)
	}
	if version != JournalV1 {
		t.Fatalf("expected JournalV1, got %v", version)
	}
	if got.StateRoot[0] != 0xaa {
		t.Fatalf("stateRoot not decoded: %x", got.StateRoot)
	}
	if got.NoteIndex != 7 {
		t.Fatalf("noteIndex not decoded: %d", got.NoteIndex)
	}
}

func TestUnpackVersionedV2(t *testing.T) {
	var j ClaimJournal
	j.BlockNumber = 9
	packed := j.Pack()
	got, version, tag := UnpackVersioned(packed)
	if tag != ErrNone || version != JournalV2 {
		t.Fatalf("expected clean v2 decode, got tag=%v version=%v", tag, version)
	}
	if got.BlockNumber != 9 {
		t.Fatalf("blockNumber mismatch: %d", got.BlockNumber)
	}
}
