package pipeline

// Minimal RLP/MPT/header encoders duplicated for fixture construction only,
// mirroring the helpers claimcore's own tests use to build symmetric
// fixtures rather than hand-computed byte arrays.

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

// compactEncodeLeaf hex-prefix-encodes a full 32-byte key as a leaf path
//: flag nibble 0x2 (leaf, even length) followed by the key
// bytes verbatim, since 64 nibbles is already even.
func compactEncodeLeaf(key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = 0x20
	copy(out[1:], key)
	return out
}

// buildHeaderFixture encodes a minimal 17-field Shanghai-layout header with
// stateRoot and number in their load-bearing positions.
func buildHeaderFixture(stateRoot [32]byte, number uint64) []byte {
	fields := make([][]byte, 17)
	var zero32 [32]byte
	fields[0] = rlpEncodeString(zero32[:])
	fields[1] = rlpEncodeString(zero32[:])
	fields[2] = rlpEncodeString(make([]byte, 20))
	fields[3] = rlpEncodeString(stateRoot[:])
	fields[4] = rlpEncodeString(zero32[:])
	fields[5] = rlpEncodeString(zero32[:])
	fields[6] = rlpEncodeString(make([]byte, 256))
	fields[7] = rlpEncodeQuantity(0)
	fields[8] = rlpEncodeQuantity(number)
	fields[9] = rlpEncodeQuantity(30_000_000)
	fields[10] = rlpEncodeQuantity(15_000_000)
	fields[11] = rlpEncodeQuantity(1_700_000_000)
	fields[12] = rlpEncodeString(nil)
	fields[13] = rlpEncodeString(zero32[:])
	fields[14] = rlpEncodeString(make([]byte, 8))
	fields[15] = rlpEncodeQuantity(1_000_000_000)
	fields[16] = rlpEncodeString(zero32[:])
	return rlpEncodeList(fields)
}
