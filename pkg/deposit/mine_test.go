package deposit

import (
	"crypto/sha256"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

func TestMineProducesValidDescriptor(t *testing.T) {
	notes := []NoteInput{
		{Recipient: hexOfLen('5', 40), Amount: "5"},
	}
	result, err := Mine(167013, notes, "", false)
	if err != nil {
		t.Fatalf("mine failed: %v", err)
	}
	if result.Iterations != 1 {
		t.Fatalf("expected 1 iteration with PoW disabled, got %d", result.Iterations)
	}
	derived, err := Derive(result.Descriptor)
	if err != nil {
		t.Fatalf("mined descriptor failed to derive: %v", err)
	}
	if derived.TargetAddress != result.TargetAddress {
		t.Fatal("mined target address must match the persisted descriptor's derivation")
	}
}

func TestMineWithPoWGate(t *testing.T) {
	notes := []NoteInput{
		{Recipient: hexOfLen('5', 40), Amount: "5"},
	}
	result, err := Mine(167013, notes, "", true)
	if err != nil {
		t.Fatalf("mine with PoW failed: %v", err)
	}
	if result.Iterations < 1 {
		t.Fatal("expected at least 1 iteration")
	}

	derived, err := Derive(result.Descriptor)
	if err != nil {
		t.Fatalf("mined descriptor failed to derive: %v", err)
	}
	var secret [32]byte
	copy(secret[:], hexutil.MustDecode(result.Descriptor.Secret))
	if !satisfiesPoW(derived.NotesHash, secret) {
		t.Fatal("mined secret does not satisfy sha256(notesHash || secret)[29..32] == 0")
	}
}

// TestSatisfiesPoWMatchesSha256TrailingZeroBytes checks satisfiesPoW against
// an independently computed sha256(notesHash || secret) for a range of
// inputs, rather than relying on brute-force search turning up a passing
// secret (finding one is a 1-in-2^24 event, too rare to depend on here).
func TestSatisfiesPoWMatchesSha256TrailingZeroBytes(t *testing.T) {
	var notesHash [32]byte
	notesHash[0] = 0x42

	for i := 0; i < 4096; i++ {
		var secret [32]byte
		secret[0] = byte(i)
		secret[1] = byte(i >> 8)

		preimage := append(append([]byte{}, notesHash[:]...), secret[:]...)
		h := sha256.Sum256(preimage)
		want := h[29] == 0 && h[30] == 0 && h[31] == 0

		if got := satisfiesPoW(notesHash, secret); got != want {
			t.Fatalf("satisfiesPoW(notesHash, secret=%x) = %v, want %v (sha256=%x)", secret, got, want, h)
		}
	}
}

func TestMineRejectsTooManyNotes(t *testing.T) {
	notes := make([]NoteInput, 6)
	for i := range notes {
		notes[i] = NoteInput{Recipient: hexOfLen('5', 40), Amount: "1"}
	}
	if _, err := Mine(1, notes, "", false); err != ErrTooManyNotes {
		t.Fatalf("expected ErrTooManyNotes, got %v", err)
	}
}
