package claimcore

// Minimal RLP encoder used only by tests to build fixtures. Production code
// in this package never encodes RLP — the evaluator only ever decodes trie nodes and
// headers it is handed.

func rlpEncodeString(b []byte) []byte {
	switch {
	case len(b) == 1 && b[0] <= 0x7f:
		return []byte{b[0]}
	case len(b) <= 55:
		out := make([]byte, 0, 1+len(b))
		out = append(out, byte(0x80+len(b)))
		return append(out, b...)
	default:
		lenBytes := minimalBigEndian(uint64(len(b)))
		out := make([]byte, 0, 1+len(lenBytes)+len(b))
		out = append(out, byte(0xb7+len(lenBytes)))
		out = append(out, lenBytes...)
		return append(out, b...)
	}
}

func rlpEncodeList(children [][]byte) []byte {
	var payload []byte
	for _, c := range children {
		payload = append(payload, c...)
	}
	if len(payload) <= 55 {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, byte(0xc0+len(payload)))
		return append(out, payload...)
	}
	lenBytes := minimalBigEndian(uint64(len(payload)))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, byte(0xf7+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}

func rlpEncodeQuantity(n uint64) []byte {
	if n == 0 {
		return rlpEncodeString(nil)
	}
	return rlpEncodeString(minimalBigEndian(n))
}

func minimalBigEndian(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// compactEncode packs nibbles into the trie's compact path encoding,
// mirroring decodeCompactPath's expectations.
func compactEncode(nibbles []byte, isLeaf bool) []byte {
	isOdd := len(nibbles)%2 == 1
	var flags byte
	if isLeaf {
		flags |= 0x02
	}
	if isOdd {
		flags |= 0x01
	}
	out := make([]byte, 0, 1+len(nibbles)/2)
	first := flags << 4
	idx := 0
	if isOdd {
		first |= nibbles[0]
		idx = 1
	}
	out = append(out, first)
	for idx < len(nibbles) {
		out = append(out, nibbles[idx]<<4|nibbles[idx+1])
		idx += 2
	}
	return out
}

func toNibbles(b []byte) []byte {
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c>>4, c&0x0f)
	}
	return out
}
