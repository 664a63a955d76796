package node

import "testing"

func TestLoadEnvConfigDefaultsWithoutEnvFile(t *testing.T) {
	cfg, err := LoadEnvConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != 1 || cfg.ShareSize != 1024 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadEnvConfigOverridesFromEnvironment(t *testing.T) {
	t.Setenv("ANIMICA_CHAIN_ID", "42")
	t.Setenv("ANIMICA_NETWORK", "testnet")
	t.Setenv("ANIMICA_PEERS", "127.0.0.1:19111,127.0.0.1:19112")

	cfg, err := LoadEnvConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != 42 {
		t.Fatalf("expected chain id 42, got %d", cfg.ChainID)
	}
	if cfg.Network != "testnet" {
		t.Fatalf("expected network testnet, got %q", cfg.Network)
	}
	if len(cfg.Peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(cfg.Peers))
	}
}

func TestLoadEnvConfigRejectsInvalidOverride(t *testing.T) {
	t.Setenv("ANIMICA_NS_SIZE", "24")
	if _, err := LoadEnvConfig(""); err == nil {
		t.Fatalf("expected validation error for ns_size=24")
	}
}
