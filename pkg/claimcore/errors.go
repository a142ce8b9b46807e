package claimcore

// ErrTag is a closed enum of evaluator failure reasons. The evaluator never
// returns a Go `error`; every failure path in this package returns a value
// of this type so the guest has no exception-like control flow.
type ErrTag uint8

const (
	ErrNone ErrTag = iota
	ErrInvalidNoteCount
	ErrInvalidNoteIndex
	ErrInvalidInputLengths
	ErrInactiveNoteHasZeroAmount
	ErrSelectedAmountMismatch
	ErrRecipientHashMismatch
	ErrTotalAmountExceeded
	ErrInvalidProofDepth
	ErrProofShapeMismatch
	ErrProofNodeTooLarge
	ErrInvalidNodeReference
	ErrInvalidRlpNode
	ErrInvalidTrieNode
	ErrInvalidTriePath
	ErrMissingAccountValue
	ErrInvalidAccountValue
	ErrInsufficientAccountBalance
	ErrInvalidBlockHeaderHash
	ErrInvalidBlockHeaderShape
	ErrBlockNumberMismatch
	ErrInvalidLength
)

var tagStrings = [...]string{
	ErrNone: "ok",
	ErrInvalidNoteCount: "InvalidNoteCount",
	ErrInvalidNoteIndex: "InvalidNoteIndex",
	ErrInvalidInputLengths: "InvalidInputLengths",
	ErrInactiveNoteHasZeroAmount: "InactiveNoteHasZeroAmount",
	ErrSelectedAmountMismatch: "SelectedAmountMismatch",
	ErrRecipientHashMismatch: "RecipientHashMismatch",
	ErrTotalAmountExceeded: "TotalAmountExceeded",
	ErrInvalidProofDepth: "InvalidProofDepth",
	ErrProofShapeMismatch: "ProofShapeMismatch",
	ErrProofNodeTooLarge: "ProofNodeTooLarge",
	ErrInvalidNodeReference: "InvalidNodeReference",
	ErrInvalidRlpNode: "InvalidRlpNode",
	ErrInvalidTrieNode: "InvalidTrieNode",
	ErrInvalidTriePath: "InvalidTriePath",
	ErrMissingAccountValue: "MissingAccountValue",
	ErrInvalidAccountValue: "InvalidAccountValue",
	ErrInsufficientAccountBalance: "InsufficientAccountBalance",
	ErrInvalidBlockHeaderHash: "InvalidBlockHeaderHash",
	ErrInvalidBlockHeaderShape: "InvalidBlockHeaderShape",
	ErrBlockNumberMismatch: "BlockNumberMismatch",
	ErrInvalidLength: "InvalidLength",
}

// String renders the stable human-readable name used in operator logs. The
// guest itself never formats this — only host-side callers do.
func (t ErrTag) String() string {
	if int(t) < len(tagStrings) && tagStrings[t] != "" {
		return tagStrings[t]
	}
	return "Unknown"
}

// Ok reports whether the tag represents success.
func (t ErrTag) Ok() bool {
	return t == ErrNone
}
