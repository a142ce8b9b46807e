// Package prover is a thin HTTP adapter to the external zero-knowledge
// proving engine, which is deliberately out of scope for this repository.
// It exists only to satisfy pipeline.Prover.
package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/claimcore"
)

// Config configures the HTTP adapter: network endpoint plus a request
// timeout.
type Config struct {
	Endpoint string
	Timeout time.Duration
	ReceiptKind string // composite | succinct | groth16
}

// Client calls an external proving service over HTTP and returns the raw
// seal bytes it reports.
type Client struct {
	endpoint string
	receiptKind string
	http *http.Client
}

// New constructs a Client from cfg, applying a default timeout when unset.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		endpoint: cfg.Endpoint,
		receiptKind: cfg.ReceiptKind,
		http: &http.Client{Timeout: timeout},
	}
}

type proveRequest struct {
	ReceiptKind string `json:"receiptKind"`
	BlockNumber uint64 `json:"blockNumber"`
	BlockHash string `json:"blockHash"`
	ChainID uint64 `json:"chainId"`
	NoteIndex uint32 `json:"noteIndex"`
	NoteCount uint32 `json:"noteCount"`
	Secret string `json:"secret"`
	Amounts []string `json:"amounts"`
	RecipientHashes []string `json:"recipientHashes"`
	BlockHeaderRLP string `json:"blockHeaderRlp"`
	ProofNodes []string `json:"proofNodes"`
}

type proveResponse struct {
	Seal string `json:"seal"`
	Error string `json:"error"`
}

// Prove implements pipeline.Prover by POSTing the witness to the configured
// proving service and decoding the returned seal.
func (c *Client) Prove(ctx context.Context, w claimcore.ClaimWitness) ([]byte, error) {
	req := proveRequest{
		ReceiptKind: c.receiptKind,
		BlockNumber: w.BlockNumber,
		BlockHash: hexutil.Encode(w.BlockHash[:]),
		ChainID: w.ChainID,
		NoteIndex: w.NoteIndex,
		NoteCount: w.NoteCount,
		Secret: hexutil.Encode(w.Secret[:]),
	}
	for i := 0; i < int(w.NoteCount); i++ {
		req.Amounts = append(req.Amounts, hexutil.Encode(w.Amounts[i][:]))
		req.RecipientHashes = append(req.RecipientHashes, hexutil.Encode(w.RecipientHash[i][:]))
	}
	req.BlockHeaderRLP = hexutil.Encode(w.BlockHeaderRLP)
	for i := 0; i < int(w.ProofDepth); i++ {
		req.ProofNodes = append(req.ProofNodes, hexutil.Encode(w.ProofNodes[i]))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("prover: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("prover: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("prover: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("prover: reading response: %w", err)
	}
	var pr proveResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("prover: parsing response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || pr.Error != "" {
		return nil, fmt.Errorf("prover: service reported: %s", pr.Error)
	}

	seal, err := hexutil.Decode(pr.Seal)
	if err != nil {
		return nil, fmt.Errorf("prover: decoding seal: %w", err)
	}
	return seal, nil
}
