package claimcore

// ClaimWitness is the private input to the claim evaluator.
type ClaimWitness struct {
	BlockNumber uint64
	BlockHash [32]byte
	ChainID uint64
	NoteIndex uint32
	Amount [16]byte
	Recipient [20]byte
	Secret [32]byte
	NoteCount uint32
	Amounts [MaxNotes][16]byte
	RecipientHash [MaxNotes][32]byte

	BlockHeaderRLP []byte

	ProofDepth uint32
	ProofNodes [][]byte
	ProofNodeLengths []uint32
}

// EvaluateClaim is the pure function evaluateClaim(witness) -> journal | Error.
// It reports the first violation encountered, checked in a fixed order; no
// partial computation is exposed on failure.
func EvaluateClaim(w ClaimWitness) (ClaimJournal, ErrTag) {
	var zero ClaimJournal

	// 1. Structural checks.
	if w.NoteCount < 1 || w.NoteCount > MaxNotes {
		return zero, ErrInvalidNoteCount
	}
	if w.NoteIndex >= w.NoteCount {
		return zero, ErrInvalidNoteIndex
	}
	if uint32(len(w.ProofNodes)) != w.ProofDepth || uint32(len(w.ProofNodeLengths)) != w.ProofDepth {
		return zero, ErrInvalidInputLengths
	}
	if w.Amounts[w.NoteIndex] != w.Amount {
		return zero, ErrSelectedAmountMismatch
	}
	wantHash := RecipientHash(w.Recipient)
	if w.RecipientHash[w.NoteIndex] != wantHash {
		return zero, ErrRecipientHashMismatch
	}

	// 2. Totals.
	var total [16]byte
	overflow := false
	for i := uint32(0); i < w.NoteCount; i++ {
		if isZero16(w.Amounts[i]) {
			return zero, ErrInactiveNoteHasZeroAmount
		}
		total, overflow = add128(total, w.Amounts[i])
		if overflow {
			return zero, ErrTotalAmountExceeded
		}
	}
	maxTotal := decimalTo16(MaxTotalWeiDecimal)
	if compare128(total, maxTotal) > 0 {
		return zero, ErrTotalAmountExceeded
	}

	// 3. Proof shape.
	if w.ProofDepth < 1 || w.ProofDepth > MaxProofDepth {
		return zero, ErrInvalidProofDepth
	}
	for i, n := range w.ProofNodes {
		if uint32(len(n)) != w.ProofNodeLengths[i] {
			return zero, ErrProofShapeMismatch
		}
		if len(n) > MaxNodeBytes {
			return zero, ErrProofNodeTooLarge
		}
	}

	// 4. Address derivation.
	var amtPtrs [MaxNotes]*[16]byte
	for i := uint32(0); i < w.NoteCount; i++ {
		amtPtrs[i] = &w.Amounts[i]
	}
	notesHash := NotesHash(int(w.NoteCount), amtPtrs, w.RecipientHash)
	targetAddr := TargetAddress(w.Secret, w.ChainID, notesHash)
	// targetAddr is the account whose balance step 6 proves.

	// 5. State root recovery.
	stateRoot, tag := ParseHeader(w.BlockHash, w.BlockNumber, w.BlockHeaderRLP)
	if tag != ErrNone {
		return zero, tag
	}

	// 6. Balance proof.
	balance, tag := VerifyAccountProof(stateRoot, targetAddr, w.ProofNodes)
	if tag != ErrNone {
		return zero, tag
	}
	if !BalanceGte(balance, total) {
		return zero, ErrInsufficientAccountBalance
	}

	// 7. Nullifier.
	nullifier := Nullifier(w.Secret, w.ChainID, w.NoteIndex)

	// 8. Emit journal.
	return ClaimJournal{
		BlockNumber: w.BlockNumber,
		BlockHash: w.BlockHash,
		ChainID: w.ChainID,
		Amount: w.Amount,
		Recipient: w.Recipient,
		Nullifier: nullifier,
	}, ErrNone
}

func isZero16(b [16]byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// add128 adds two big-endian 128-bit values, returning the sum and whether
// it overflowed 128 bits.
func add128(a, b [16]byte) ([16]byte, bool) {
	var out [16]byte
	var carry uint16
	for i := 15; i >= 0; i-- {
		sum := uint16(a[i]) + uint16(b[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out, carry != 0
}

// decimalTo16 parses a decimal string into a big-endian 128-bit buffer. Used
// only for the compile-time MaxTotalWei constant, so it panics on malformed
// input rather than returning an ErrTag (this is not witness-controlled).
func decimalTo16(decimal string) [16]byte {
	var out [16]byte
	for _, c := range decimal {
		if c < '0' || c > '9' {
			panic("decimalTo16: invalid digit")
		}
		digit := uint16(c - '0')
		var carry uint16 = digit
		for i := 15; i >= 0; i-- {
			v := uint16(out[i])*10 + carry
			out[i] = byte(v)
			carry = v >> 8
		}
		if carry != 0 {
			panic("decimalTo16: overflow")
		}
	}
	return out
}
