package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticConfig is the optional shadow.yaml overlay. Values here only fill in
// Config fields left at their zero value, so environment variables always
// win when both are set.
type StaticConfig struct {
	ChainID         uint64 `yaml:"chain_id"`
	RPCURL          string `yaml:"rpc_url"`
	ShadowAddress   string `yaml:"shadow_address"`
	VerifierAddress string `yaml:"verifier_address"`
	Workspace       string `yaml:"workspace"`
}

// LoadStaticConfig reads a YAML file at path. A missing file is not an
// error — callers treat it as "no overlay".
func LoadStaticConfig(path string) (*StaticConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &StaticConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading static config %s: %w", path, err)
	}

	var sc StaticConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing static config %s: %w", path, err)
	}
	return &sc, nil
}

// ApplyStatic fills in any Config field left at its zero value with the
// corresponding StaticConfig value. Environment-derived fields already set
// by Load are never overwritten, except Workspace: Load defaults it to
// "./workspace", and a non-empty StaticConfig.Workspace replaces that default.
func (c *Config) ApplyStatic(sc *StaticConfig) {
	if sc == nil {
		return
	}
	if c.RPCURL == "" {
		c.RPCURL = sc.RPCURL
	}
	if c.ChainID == 0 {
		c.ChainID = sc.ChainID
	}
	if c.ShadowAddress == "" {
		c.ShadowAddress = sc.ShadowAddress
	}
	if c.VerifierAddress == "" {
		c.VerifierAddress = sc.VerifierAddress
	}
	if sc.Workspace != "" && c.Workspace == "./workspace" {
		c.Workspace = sc.Workspace
	}
}
