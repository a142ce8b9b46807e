package claimcore

// Hexary Merkle-Patricia-Trie account-proof verifier. Iterative,
// bounded by MaxProofDepth — no recursion, since this runs inside the guest.

// keyNibbles expands a 32-byte key hash into 64 nibbles, high nibble first.
func keyNibbles(keyHash [32]byte) [64]byte {
	var out [64]byte
	for i, b := range keyHash {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0f
	}
	return out
}

// VerifyAccountProof walks proofNodes from stateRoot to the account leaf for
// address, returning the 32-byte big-endian balance on success.
func VerifyAccountProof(stateRoot [32]byte, address [20]byte, proofNodes [][]byte) ([32]byte, ErrTag) {
	var zero [32]byte

	depth := len(proofNodes)
	if depth < 1 || depth > MaxProofDepth {
		return zero, ErrInvalidProofDepth
	}
	for _, n := range proofNodes {
		if len(n) > MaxNodeBytes {
			return zero, ErrProofNodeTooLarge
		}
	}

	keyHash := Keccak256Sum(address[:])
	nibbles := keyNibbles(keyHash)
	keyIndex := 0

	var expectedRef []byte // nil means "this is the root node"

	for d := 0; d < depth; d++ {
		node := proofNodes[d]

		if d == 0 {
			got := Keccak256Sum(node)
			if got != stateRoot {
				return zero, ErrInvalidNodeReference
			}
		} else {
			switch {
			case len(expectedRef) == 32:
				got := Keccak256Sum(node)
				if !bytesEqual32(got, expectedRef) {
					return zero, ErrInvalidNodeReference
				}
			case len(expectedRef) >= 1 && len(expectedRef) < 32:
				if !bytesEqual(node, expectedRef) {
					return zero, ErrInvalidNodeReference
				}
			default:
				return zero, ErrInvalidNodeReference
			}
		}

		children, tag := decodeList(node)
		if tag != ErrNone {
			return zero, tag
		}

		switch len(children) {
		case 17:
			if keyIndex == 64 {
				valueSlot := children[16].data
				if len(valueSlot) == 0 {
					return zero, ErrMissingAccountValue
				}
				if d != depth-1 {
					return zero, ErrInvalidTrieNode
				}
				return decodeAccountBalance(valueSlot)
			}
			nib := nibbles[keyIndex]
			child := children[nib].data
			if len(child) == 0 {
				return zero, ErrMissingAccountValue
			}
			expectedRef = child
			keyIndex++

		case 2:
			pathNibbles, isLeaf, pTag := decodeCompactPath(children[0].data)
			if pTag != ErrNone {
				return zero, pTag
			}
			if keyIndex+len(pathNibbles) > 64 {
				return zero, ErrInvalidTriePath
			}
			for i, pn := range pathNibbles {
				if nibbles[keyIndex+i] != pn {
					return zero, ErrInvalidTriePath
				}
			}
			keyIndex += len(pathNibbles)

			valueSlot := children[1].data
			if isLeaf {
				if keyIndex != 64 {
					return zero, ErrInvalidTriePath
				}
				if len(valueSlot) == 0 {
					return zero, ErrMissingAccountValue
				}
				if d != depth-1 {
					return zero, ErrInvalidTrieNode
				}
				return decodeAccountBalance(valueSlot)
			}
			// extension
			if len(valueSlot) == 0 {
				return zero, ErrMissingAccountValue
			}
			expectedRef = valueSlot

		default:
			return zero, ErrInvalidTrieNode
		}
	}

	return zero, ErrMissingAccountValue
}

// decodeCompactPath decodes a compact-encoded nibble path. The
// high nibble of the first byte carries two flags: bit 1 = is-leaf, bit 0 =
// is-odd-length. Flag nibbles above 3 are rejected.
func decodeCompactPath(path []byte) ([]byte, bool, ErrTag) {
	if len(path) == 0 {
		return nil, false, ErrInvalidTriePath
	}
	first := path[0]
	flags := first >> 4
	if flags > 3 {
		return nil, false, ErrInvalidTriePath
	}
	isLeaf := flags&0x02 != 0
	isOdd := flags&0x01 != 0

	var nibbles []byte
	if isOdd {
		nibbles = append(nibbles, first&0x0f)
	}
	for _, b := range path[1:] {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	return nibbles, isLeaf, ErrNone
}

// decodeAccountBalance decodes the account RLP as a 4-field list (nonce,
// balance, storageRoot, codeHash) and right-aligns the balance payload into a
// 32-byte big-endian buffer.
func decodeAccountBalance(accountRLP []byte) ([32]byte, ErrTag) {
	var zero [32]byte
	fields, tag := decodeList(accountRLP)
	if tag != ErrNone {
		return zero, ErrInvalidAccountValue
	}
	if len(fields) != 4 {
		return zero, ErrInvalidAccountValue
	}
	balance := fields[1].data
	if len(balance) > 32 {
		return zero, ErrInvalidAccountValue
	}
	var out [32]byte
	copy(out[32-len(balance):], balance)
	return out, ErrNone
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesEqual32(a [32]byte, b []byte) bool {
	return bytesEqual(a[:], b)
}
