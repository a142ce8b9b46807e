// Package chainrpc is the JSON-RPC adapter: chain id, latest
// block, and account proof, with the block header re-encoded canonically
// and verified against the reported hash. Built directly on
// rpc.Client.CallContext for eth_getProof, the way the pack's own
// lightclient.lightState.requestProof does — ethclient.Client's high-level
// API does not expose eth_getProof.
package chainrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

var ErrBlockHashMismatch = errors.New("chainrpc: re-encoded header hash does not match reported block hash")

// Client owns an HTTP client pool; callers pass endpoint URLs when
// constructing one.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to an RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("chainrpc: dialing %s: %w", url, err)
	}
	return &Client{rpc: c}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainID fetches eth_chainId.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return 0, fmt.Errorf("chainrpc: eth_chainId: %w", err)
	}
	return uint64(result), nil
}

// Block is the result of LatestBlock: the canonical header bytes, its
// number, and hash, already verified against each other.
type Block struct {
	Number uint64
	Hash [32]byte
	HeaderRLP []byte
}

type rpcHeader struct {
	ParentHash common.Hash `json:"parentHash"`
	UncleHash common.Hash `json:"sha3Uncles"`
	Coinbase common.Address `json:"miner"`
	Root common.Hash `json:"stateRoot"`
	TxHash common.Hash `json:"transactionsRoot"`
	ReceiptHash common.Hash `json:"receiptsRoot"`
	Bloom hexutil.Bytes `json:"logsBloom"`
	Difficulty *hexutil.Big `json:"difficulty"`
	Number *hexutil.Big `json:"number"`
	GasLimit hexutil.Uint64 `json:"gasLimit"`
	GasUsed hexutil.Uint64 `json:"gasUsed"`
	Time hexutil.Uint64 `json:"timestamp"`
	Extra hexutil.Bytes `json:"extraData"`
	MixDigest common.Hash `json:"mixHash"`
	Nonce hexutil.Bytes `json:"nonce"`
	BaseFee *hexutil.Big `json:"baseFeePerGas"`
	WithdrawalsHash *common.Hash `json:"withdrawalsRoot"`
	Hash common.Hash `json:"hash"`
}

// LatestBlock fetches eth_getBlockByNumber("latest") and re-encodes the
// header canonically, verifying the result against the RPC-reported hash
// before returning it.
func (c *Client) LatestBlock(ctx context.Context) (*Block, error) {
	var h rpcHeader
	if err := c.rpc.CallContext(ctx, &h, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, fmt.Errorf("chainrpc: eth_getBlockByNumber: %w", err)
	}

	headerRLP := EncodeCanonicalHeader(h)
	computed := claimcore.Keccak256Sum(headerRLP)
	if computed != h.Hash {
		return nil, ErrBlockHashMismatch
	}

	return &Block{
		Number: h.Number.ToInt().Uint64(),
		Hash: computed,
		HeaderRLP: headerRLP,
	}, nil
}

// Call performs a read-only eth_call against to with calldata data at the
// latest block, for the isConsumed/imageId view calls the pipeline's ABI
// layer encodes.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	callArgs := map[string]interface{}{
		"to": to,
		"data": hexutil.Encode(data),
	}
	var result hexutil.Bytes
	if err := c.rpc.CallContext(ctx, &result, "eth_call", callArgs, "latest"); err != nil {
		return nil, fmt.Errorf("chainrpc: eth_call: %w", err)
	}
	return result, nil
}

// AccountProof is the result of eth_getProof for a single account, with no
// storage keys requested (the claim evaluator only needs the account
// balance).
type AccountProof struct {
	Balance [32]byte
	ProofNodes [][]byte
}

type accountResult struct {
	AccountProof []hexutil.Bytes `json:"accountProof"`
	Balance *hexutil.Big `json:"balance"`
}

// AccountProofAt fetches eth_getProof for address at blockNumber.
func (c *Client) AccountProofAt(ctx context.Context, address [20]byte, blockNumber uint64) (*AccountProof, error) {
	var res accountResult
	err := c.rpc.CallContext(ctx, &res, "eth_getProof",
		common.BytesToAddress(address[:]), []string{}, hexutil.EncodeUint64(blockNumber))
	if err != nil {
		return nil, fmt.Errorf("chainrpc: eth_getProof: %w", err)
	}

	nodes := make([][]byte, len(res.AccountProof))
	for i, n := range res.AccountProof {
		nodes[i] = n
	}

	var balance [32]byte
	if res.Balance != nil {
		b := res.Balance.ToInt().Bytes()
		copy(balance[32-len(b):], b)
	}

	return &AccountProof{Balance: balance, ProofNodes: nodes}, nil
}
