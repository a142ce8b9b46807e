package chainrpc

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

func sampleHeader() rpcHeader {
	var root common.Hash
	root[0] = 0xaa
	withdrawals := common.Hash{0xbb}
	return rpcHeader{
		Root:            root,
		Bloom:           make(hexutil.Bytes, 256),
		Difficulty:      (*hexutil.Big)(hexutil.MustDecodeBig("0x0")),
		Number:          (*hexutil.Big)(hexutil.MustDecodeBig("0x4853e3")),
		GasLimit:        30_000_000,
		GasUsed:         15_000_000,
		Time:            1_700_000_000,
		Extra:           nil,
		Nonce:           make(hexutil.Bytes, 8),
		BaseFee:         (*hexutil.Big)(hexutil.MustDecodeBig("0x3b9aca00")),
		WithdrawalsHash: &withdrawals,
	}
}

func TestEncodeCanonicalHeaderRoundTripsThroughParseHeader(t *testing.T) {
	h := sampleHeader()
	encoded := EncodeCanonicalHeader(h)
	blockHash := claimcore.Keccak256Sum(encoded)

	got, tag := claimcore.ParseHeader(blockHash, h.Number.ToInt().Uint64(), encoded)
	if tag != claimcore.ErrNone {
		t.Fatalf("ParseHeader rejected our own encoding: %v", tag)
	}
	if got != h.Root {
		t.Fatalf("state root mismatch: got %x want %x", got, h.Root)
	}
}

func TestEncodeCanonicalHeaderOmitsWithdrawalsWhenNil(t *testing.T) {
	h := sampleHeader()
	h.WithdrawalsHash = nil
	encoded := EncodeCanonicalHeader(h)
	blockHash := claimcore.Keccak256Sum(encoded)

	got, tag := claimcore.ParseHeader(blockHash, h.Number.ToInt().Uint64(), encoded)
	if tag != claimcore.ErrNone {
		t.Fatalf("ParseHeader rejected a 16-field header: %v", tag)
	}
	if got != h.Root {
		t.Fatalf("state root mismatch: got %x want %x", got, h.Root)
	}

	withWithdrawals := sampleHeader()
	encodedWith := EncodeCanonicalHeader(withWithdrawals)
	if len(encodedWith) <= len(encoded) {
		t.Fatal("expected the withdrawals-hash variant to encode more bytes")
	}
}

func TestMinimalBytesZeroIsEmpty(t *testing.T) {
	if b := minimalBytes(0); b != nil {
		t.Fatalf("expected nil for zero, got %x", b)
	}
}

func TestMinimalBytesStripsLeadingZeros(t *testing.T) {
	got := minimalBytes(0x01)
	want := []byte{0x01}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestEncodeStringSingleByteIsLiteral(t *testing.T) {
	got := encodeString([]byte{0x42})
	if len(got) != 1 || got[0] != 0x42 {
		t.Fatalf("expected single literal byte, got %x", got)
	}
}

func TestEncodeStringLongPayloadUsesLengthPrefix(t *testing.T) {
	payload := make([]byte, 256)
	got := encodeString(payload)
	if got[0] != 0xb7+2 {
		t.Fatalf("expected long-string prefix with 2 length bytes, got %x", got[0])
	}
}
