package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taikoxyz/shadow/pkg/chainrpc"
	"github.com/taikoxyz/shadow/pkg/config"
	"github.com/taikoxyz/shadow/pkg/prover"
	"github.com/taikoxyz/shadow/pkg/queue"
	"github.com/taikoxyz/shadow/pkg/server"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		workspace    = flag.String("workspace", "", "deposit/proof workspace directory (overrides WORKSPACE_DIR)")
		listenAddr   = flag.String("listen", "", "API listen address (overrides API_HOST/API_PORT)")
		rpcURL       = flag.String("rpc-url", "", "chain JSON-RPC endpoint (overrides RPC_URL)")
		staticConfig = flag.String("config", "shadow.yaml", "optional YAML config overlay")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	sc, err := config.LoadStaticConfig(*staticConfig)
	if err != nil {
		log.Fatalf("loading %s: %v", *staticConfig, err)
	}
	cfg.ApplyStatic(sc)

	if *workspace != "" {
		cfg.Workspace = *workspace
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *rpcURL != "" {
		cfg.RPCURL = *rpcURL
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := os.MkdirAll(cfg.Workspace, 0o755); err != nil {
		log.Fatalf("creating workspace %s: %v", cfg.Workspace, err)
	}

	log.Printf("connecting to chain RPC at %s", cfg.RPCURL)
	dialCtx, cancelDial := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := chainrpc.Dial(dialCtx, cfg.RPCURL)
	cancelDial()
	if err != nil {
		log.Fatalf("dialing %s: %v", cfg.RPCURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(context.Background())
	if err != nil {
		log.Fatalf("fetching chain id: %v", err)
	}
	if cfg.ChainID != 0 && cfg.ChainID != chainID {
		log.Fatalf("RPC endpoint reports chain id %d, expected %d (CHAIN_ID/chain_id)", chainID, cfg.ChainID)
	}
	log.Printf("connected: chain id %d", chainID)

	cache, err := chainrpc.NewNullifierCache(cfg.NullifierCacheTTL)
	if err != nil {
		log.Fatalf("building nullifier cache: %v", err)
	}

	proverClient := prover.New(prover.Config{
		Endpoint:    os.Getenv("PROVER_ENDPOINT"),
		ReceiptKind: cfg.ReceiptKind,
	})

	hub := server.NewHub(log.New(log.Writer(), "[shadow-ws] ", log.LstdFlags))
	jobQueue := queue.New(hub)
	metrics, registry := server.NewMetrics()

	srv := server.New(server.Config{
		Workspace:       cfg.Workspace,
		RPCURL:          cfg.RPCURL,
		ChainID:         chainID,
		ShadowAddress:   cfg.ShadowAddress,
		VerifierAddress: cfg.VerifierAddress,
		ReceiptKind:     cfg.ReceiptKind,
		RequirePoW:      cfg.RequirePoW,

		Client: client,
		Cache:  cache,
		Prover: proverClient,
		Queue:  jobQueue,
		Hub:    hub,

		Metrics:        metrics,
		MetricsHandler: server.PromHandler(registry),

		Logger: log.New(log.Writer(), "[shadow-server] ", log.LstdFlags),
	})

	apiServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Routes()}
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", server.PromHandler(registry))
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		log.Printf("API listening on %s", cfg.ListenAddr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server: %v", err)
		}
	}()
	go func() {
		log.Printf("metrics listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}
}
