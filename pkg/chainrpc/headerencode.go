package chainrpc

import "github.com/ethereum/go-ethereum/common/hexutil"

// EncodeCanonicalHeader reproduces the 17-field Shanghai header layout (spec
// §4.8): hash-typed fields are kept byte-literal, numeric-quantity fields
// are normalized to minimal big-endian (zero encodes as an empty string).
func EncodeCanonicalHeader(h rpcHeader) []byte {
	fields := [][]byte{
		encodeString(h.ParentHash[:]),
		encodeString(h.UncleHash[:]),
		encodeString(h.Coinbase[:]),
		encodeString(h.Root[:]),
		encodeString(h.TxHash[:]),
		encodeString(h.ReceiptHash[:]),
		encodeString(h.Bloom),
		encodeQuantity(bigToBytes(h.Difficulty)),
		encodeQuantity(bigToBytes(h.Number)),
		encodeQuantity(minimalBytes(uint64(h.GasLimit))),
		encodeQuantity(minimalBytes(uint64(h.GasUsed))),
		encodeQuantity(minimalBytes(uint64(h.Time))),
		encodeString(h.Extra),
		encodeString(h.MixDigest[:]),
		encodeString(h.Nonce),
		encodeQuantity(bigToBytes(h.BaseFee)),
	}
	if h.WithdrawalsHash != nil {
		fields = append(fields, encodeString(h.WithdrawalsHash[:]))
	}
	return encodeList(fields)
}

func bigToBytes(v *hexutil.Big) []byte {
	if v == nil {
		return nil
	}
	return v.ToInt().Bytes()
}

// encodeString RLP-encodes a byte string.
func encodeString(b []byte) []byte {
	switch {
	case len(b) == 1 && b[0] <= 0x7f:
		return []byte{b[0]}
	case len(b) <= 55:
		out := make([]byte, 0, 1+len(b))
		out = append(out, byte(0x80+len(b)))
		return append(out, b...)
	default:
		lenBytes := minimalBytes(uint64(len(b)))
		out := make([]byte, 0, 1+len(lenBytes)+len(b))
		out = append(out, byte(0xb7+len(lenBytes)))
		out = append(out, lenBytes...)
		return append(out, b...)
	}
}

// encodeQuantity RLP-encodes a big-endian numeric quantity; zero encodes as
// the empty string.
func encodeQuantity(b []byte) []byte {
	return encodeString(b)
}

func encodeList(children [][]byte) []byte {
	var payload []byte
	for _, c := range children {
		payload = append(payload, c...)
	}
	if len(payload) <= 55 {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, byte(0xc0+len(payload)))
		return append(out, payload...)
	}
	lenBytes := minimalBytes(uint64(len(payload)))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, byte(0xf7+len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}

func minimalBytes(n uint64) []byte {
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
