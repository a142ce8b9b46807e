package pipeline

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

// claimABIJSON describes the single method the system ever calls on the
// Shadow claim contract: a dynamic proof blob followed by the inlined
// static journal tuple.
const claimABIJSON = `[
 {
 "type": "function",
 "name": "claim",
 "stateMutability": "nonpayable",
 "inputs": [
 {"name": "proof", "type": "bytes"},
 {"name": "input", "type": "tuple", "components": [
 {"name": "blockNumber", "type": "uint64"},
 {"name": "chainId", "type": "uint256"},
 {"name": "amount", "type": "uint256"},
 {"name": "recipient", "type": "address"},
 {"name": "nullifier", "type": "bytes32"}
 ]}
 ],
 "outputs": []
 },
 {
 "type": "function",
 "name": "isConsumed",
 "stateMutability": "view",
 "inputs": [{"name": "nullifier", "type": "bytes32"}],
 "outputs": [{"name": "", "type": "bool"}]
 },
 {
 "type": "function",
 "name": "imageId",
 "stateMutability": "view",
 "inputs": [],
 "outputs": [{"name": "", "type": "bytes32"}]
 }
]`

var claimContractABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(claimABIJSON))
	if err != nil {
		panic(fmt.Sprintf("pipeline: invalid embedded claim ABI: %v", err))
	}
	claimContractABI = parsed
}

// claimInput is the tuple argument of claim, mirroring claimABIJSON's
// "input" component field order exactly (abi.Pack matches by struct field
// order, not by name).
type claimInput struct {
	BlockNumber uint64
	ChainId *big.Int
	Amount *big.Int
	Recipient common.Address
	Nullifier [32]byte
}

// ClaimCalldata ABI-encodes a call to claim(bytes, (uint64,uint256,uint256,address,bytes32))
// for journal j and the proof bytes produced by the prover. Testable
// property 10: the first 4 bytes are the method selector; the dynamic
// proof bytes begin at offset 4+192=196 since the tuple has no dynamic
// members and is therefore inlined into the head alongside the offset word.
func ClaimCalldata(j claimcore.ClaimJournal, proof []byte) ([]byte, error) {
	input := claimInput{
		BlockNumber: j.BlockNumber,
		ChainId: new(big.Int).SetUint64(j.ChainID),
		Amount: amountToBig(j.Amount),
		Recipient: common.BytesToAddress(j.Recipient[:]),
		Nullifier: j.Nullifier,
	}
	return claimContractABI.Pack("claim", proof, input)
}

// IsConsumedCalldata ABI-encodes isConsumed(bytes32) — selector 0x6346e832.
func IsConsumedCalldata(nullifier [32]byte) ([]byte, error) {
	return claimContractABI.Pack("isConsumed", nullifier)
}

// ImageIDCalldata ABI-encodes imageId() — selector 0xef3f7dd5.
func ImageIDCalldata() ([]byte, error) {
	return claimContractABI.Pack("imageId")
}

// DecodeIsConsumed unpacks the single bool return value of an isConsumed
// eth_call result.
func DecodeIsConsumed(result []byte) (bool, error) {
	out, err := claimContractABI.Unpack("isConsumed", result)
	if err != nil {
		return false, fmt.Errorf("pipeline: decoding isConsumed result: %w", err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("pipeline: isConsumed returned %d values, want 1", len(out))
	}
	consumed, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("pipeline: isConsumed returned a non-bool value")
	}
	return consumed, nil
}

func amountToBig(amount [16]byte) *big.Int {
	return new(big.Int).SetBytes(amount[:])
}
