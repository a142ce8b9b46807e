package claimcore

// This is a minimal RLP decoder purpose-built for trie nodes and block
// headers inside the claim evaluator. It is deliberately NOT
// go-ethereum's rlp package: that decoder targets arbitrary Go structs via
// reflection and allocates per-field scratch space, which is unsuitable for
// a no-heap-friendly, bounded-depth guest routine that only ever needs "list
// of byte-string children, one level deep." Everything here operates on
// borrowed slice views into the caller's buffer — no child is copied during
// decode.

const maxRlpChildren = 17 // branch node width is the largest arity we see

// rlpItem is a borrowed view into the original buffer.
type rlpItem struct {
	data []byte
}

// decodeList decodes the outermost item at offset 0. It requires the item be
// a list whose total length equals len(input); anything else is
// ErrInvalidRlpNode. Returns the payload slices of its direct children (byte
// strings only — a child that is itself a list is rejected, since every use
// in this package only has string children).
func decodeList(input []byte) ([]rlpItem, ErrTag) {
	if len(input) == 0 {
		return nil, ErrInvalidRlpNode
	}

	prefix := input[0]
	var payloadStart, payloadLen int

	switch {
	case prefix >= 0xc0 && prefix <= 0xf7:
		payloadLen = int(prefix - 0xc0)
		payloadStart = 1
	case prefix >= 0xf8 && prefix <= 0xff:
		lenOfLen := int(prefix - 0xf7)
		if 1+lenOfLen > len(input) {
			return nil, ErrInvalidRlpNode
		}
		n, tag := decodeBigEndianLen(input[1 : 1+lenOfLen])
		if tag != ErrNone {
			return nil, tag
		}
		payloadLen = n
		payloadStart = 1 + lenOfLen
	default:
		// Not a list (single byte or string prefix) at the top level.
		return nil, ErrInvalidRlpNode
	}

	if payloadStart+payloadLen != len(input) {
		// Declared length must equal the full input length exactly —
		// no trailing bytes, no truncation.
		return nil, ErrInvalidRlpNode
	}

	children := make([]rlpItem, 0, maxRlpChildren)
	pos := payloadStart
	end := payloadStart + payloadLen
	for pos < end {
		item, consumed, tag := decodeStringAt(input, pos, end)
		if tag != ErrNone {
			return nil, tag
		}
		children = append(children, item)
		pos += consumed
		if len(children) > maxRlpChildren {
			return nil, ErrInvalidRlpNode
		}
	}
	if pos != end {
		return nil, ErrInvalidRlpNode
	}

	return children, ErrNone
}

// decodeStringAt decodes a single byte-string item starting at input[pos],
// bounded by end, returning the payload view and the number of bytes
// consumed (header + payload).
func decodeStringAt(input []byte, pos, end int) (rlpItem, int, ErrTag) {
	if pos >= end || pos >= len(input) {
		return rlpItem{}, 0, ErrInvalidRlpNode
	}
	prefix := input[pos]

	switch {
	case prefix <= 0x7f:
		return rlpItem{data: input[pos : pos+1]}, 1, ErrNone

	case prefix >= 0x80 && prefix <= 0xb7:
		strLen := int(prefix - 0x80)
		start := pos + 1
		if start+strLen > end {
			return rlpItem{}, 0, ErrInvalidRlpNode
		}
		return rlpItem{data: input[start : start+strLen]}, 1 + strLen, ErrNone

	case prefix >= 0xb8 && prefix <= 0xbf:
		lenOfLen := int(prefix - 0xb7)
		headerEnd := pos + 1 + lenOfLen
		if headerEnd > end {
			return rlpItem{}, 0, ErrInvalidRlpNode
		}
		n, tag := decodeBigEndianLen(input[pos+1 : headerEnd])
		if tag != ErrNone {
			return rlpItem{}, 0, tag
		}
		if n == 0 {
			// A long-string form with zero length is malformed — it
			// should have used the short-string form.
			return rlpItem{}, 0, ErrInvalidRlpNode
		}
		if headerEnd+n > end {
			return rlpItem{}, 0, ErrInvalidRlpNode
		}
		return rlpItem{data: input[headerEnd : headerEnd+n]}, (headerEnd + n) - pos, ErrNone

	case prefix >= 0xc0:
		// A list where only string children are expected.
		return rlpItem{}, 0, ErrInvalidRlpNode

	default:
		return rlpItem{}, 0, ErrInvalidRlpNode
	}
}

// decodeBigEndianLen interprets a big-endian length-of-length field. Rejects
// an empty field, a field wider than 8 bytes, and any value that would
// overflow a platform int.
func decodeBigEndianLen(b []byte) (int, ErrTag) {
	if len(b) == 0 || len(b) > 8 {
		return 0, ErrInvalidRlpNode
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	if n > uint64(^uint(0)>>1) {
		return 0, ErrInvalidRlpNode
	}
	return int(n), ErrNone
}
