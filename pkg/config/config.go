// Package config loads the shadow server's runtime configuration from
// environment variables and an optional YAML overlay file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the shadow proof orchestration server.
type Config struct {
	// Network configuration
	RPCURL          string
	ChainID         uint64 // expected chain id; 0 means trust whatever the RPC endpoint reports
	ShadowAddress   string // Shadow deposit/claim contract
	VerifierAddress string // RISC Zero verifier contract

	// Server configuration
	ListenAddr  string
	MetricsAddr string

	// Workspace
	Workspace string // directory holding deposit-*.json / *.proof-*.json

	// Prover
	ReceiptKind string // composite | succinct | groth16

	// Nullifier status cache
	NullifierCacheTTL time.Duration

	// Legacy/compat
	RequirePoW   bool // re-enable the v1 24-bit PoW gate on deposit mining
	MaxTotalWei  string // decimal string; "32000000000000000000" or historical "8000000000000000000"
}

// Load reads configuration from environment variables: RPC_URL,
// SHADOW_ADDRESS, VERIFIER_ADDRESS, RECEIPT_KIND. Everything else has a
// workspace-local default suitable for a single trusted operator.
func Load() (*Config, error) {
	cfg := &Config{
		RPCURL:          getEnv("RPC_URL", ""),
		ChainID:         getEnvUint64("CHAIN_ID", 0),
		ShadowAddress:   getEnv("SHADOW_ADDRESS", ""),
		VerifierAddress: getEnv("VERIFIER_ADDRESS", ""),

		ListenAddr:  getEnv("API_HOST", "0.0.0.0") + ":" + getEnv("API_PORT", "8080"),
		MetricsAddr: getEnv("API_HOST", "0.0.0.0") + ":" + getEnv("METRICS_PORT", "9090"),

		Workspace: getEnv("WORKSPACE_DIR", "./workspace"),

		ReceiptKind: getEnv("RECEIPT_KIND", "groth16"),

		NullifierCacheTTL: getEnvDuration("NULLIFIER_CACHE_TTL", 5*time.Minute),

		RequirePoW:  getEnvBool("REQUIRE_DEPOSIT_POW", false),
		MaxTotalWei: getEnv("MAX_TOTAL_WEI", "32000000000000000000"),
	}

	return cfg, nil
}

// Validate checks that configuration required to run the pipeline is present.
func (c *Config) Validate() error {
	var errs []string

	if c.RPCURL == "" {
		errs = append(errs, "RPC_URL is required but not set")
	}
	if c.Workspace == "" {
		errs = append(errs, "WORKSPACE_DIR must not be empty")
	}
	switch c.ReceiptKind {
	case "composite", "succinct", "groth16":
	default:
		errs = append(errs, fmt.Sprintf("RECEIPT_KIND %q is not one of composite|succinct|groth16", c.ReceiptKind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
