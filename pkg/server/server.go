package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/taikoxyz/shadow/pkg/chainrpc"
	"github.com/taikoxyz/shadow/pkg/pipeline"
	"github.com/taikoxyz/shadow/pkg/queue"
)

// Version is the protocol/descriptor version this build reads and writes
// (DepositDescriptor.version, BundledProofArtifact.version).
const Version = "v2"

// Config wires every dependency the facade needs. The facade itself is
// stateless; all state lives in the queue, the chain client's cache, and the
// workspace filesystem.
type Config struct {
	Workspace string
	RPCURL string
	ChainID uint64
	ShadowAddress string
	VerifierAddress string
	ReceiptKind string
	RequirePoW bool

	Client *chainrpc.Client
	Cache *chainrpc.NullifierCache
	Prover pipeline.Prover
	Queue *queue.Queue
	Hub *Hub

	Metrics *Metrics
	MetricsHandler http.Handler

	Logger *log.Logger
}

// Server is the request router for the deposit, queue, and note endpoints.
type Server struct {
	cfg Config
	logger *log.Logger

	imageIDOnce sync.Once
	imageID string
}

// New constructs a Server over cfg, defaulting a nil logger.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[shadow-server] ", log.LstdFlags)
	}
	return &Server{cfg: cfg, logger: logger}
}

// Routes builds the HTTP handler covering every endpoint the facade exposes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/metrics", s.handleMetrics)

	mux.HandleFunc("/api/deposits", s.handleDepositsCollection)
	mux.HandleFunc("/api/deposits/", s.handleDepositsSubtree)

	mux.HandleFunc("/api/queue", s.handleQueue)
	mux.HandleFunc("/api/queue/current", s.handleQueueCurrent)

	mux.HandleFunc("/ws", s.handleWS)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{
		"status": "ok",
		"version": Version,
		"workspace": s.cfg.Workspace,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{
		"version": Version,
		"workspace": s.cfg.Workspace,
		"rpcUrl": s.cfg.RPCURL,
		"chainId": s.cfg.ChainID,
		"circuitId": s.circuitID(r.Context()),
		"shadowAddress": s.cfg.ShadowAddress,
		"verifierAddress": s.cfg.VerifierAddress,
	})
}

// circuitID fetches and caches imageId() from the verifier contract
//, returning "" if the RPC client or verifier
// address isn't configured or the call fails — circuitId is optional.
func (s *Server) circuitID(ctx context.Context) string {
	s.imageIDOnce.Do(func() {
		if s.cfg.Client == nil || s.cfg.VerifierAddress == "" {
			return
		}
		calldata, err := pipeline.ImageIDCalldata()
		if err != nil {
			return
		}
		result, err := s.cfg.Client.Call(ctx, common.HexToAddress(s.cfg.VerifierAddress), calldata)
		if err != nil || len(result) == 0 {
			return
		}
		s.imageID = hexutil.Encode(result)
	})
	return s.imageID
}
