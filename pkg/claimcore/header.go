package claimcore

// ParseHeader implements the block-header parser. It hashes the
// header blob, confirms it against expectedBlockHash, decodes the top-level
// field list, and extracts the state root after checking the block number.
//
// The parser is intentionally lenient about trailing fields — newer forks
// add more than 17 — but strict about the presence and width of field 3
// (state root) and the numeric value of field 8 (block number).
func ParseHeader(expectedBlockHash [32]byte, expectedBlockNumber uint64, headerRLP []byte) ([32]byte, ErrTag) {
	var zero [32]byte

	got := Keccak256Sum(headerRLP)
	if got != expectedBlockHash {
		return zero, ErrInvalidBlockHeaderHash
	}

	fields, tag := decodeList(headerRLP)
	if tag != ErrNone {
		return zero, ErrInvalidBlockHeaderShape
	}
	if len(fields) < 9 {
		return zero, ErrInvalidBlockHeaderShape
	}

	stateRootField := fields[3].data
	if len(stateRootField) != 32 {
		return zero, ErrInvalidBlockHeaderShape
	}

	numberField := fields[8].data
	if len(numberField) > 8 {
		return zero, ErrInvalidBlockHeaderShape
	}
	var n uint64
	for _, b := range numberField {
		n = n<<8 | uint64(b)
	}
	if n != expectedBlockNumber {
		return zero, ErrBlockNumberMismatch
	}

	var stateRoot [32]byte
	copy(stateRoot[:], stateRootField)
	return stateRoot, ErrNone
}
