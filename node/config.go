package node

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Config is the node's full runtime configuration: ambient fields
// (network, data dir, bind address, logging, peers) plus the
// network-pinned parameters every Animica component reads at startup
// (CANONICAL §4.3/§4.2 "Parameters").
type Config struct {
	Network  string   `json:"network"`
	DataDir  string   `json:"data_dir"`
	BindAddr string   `json:"bind_addr"`
	LogLevel string   `json:"log_level"`
	Peers    []string `json:"peers"`
	MaxPeers int      `json:"max_peers"`

	ChainID      uint64 `json:"chain_id"`
	ShareSize    int    `json:"share_size"`
	K            int    `json:"k"`
	N            int    `json:"n"`
	NSSize       int    `json:"ns_size"`
	EpochLength  uint64 `json:"epoch_length"`
	MempoolLimit int    `json:"mempool_limit"`

	AICFBaseRate        float64 `json:"aicf_base_rate"`
	AICFFundCapPerEpoch float64 `json:"aicf_fund_cap_per_epoch"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".animica"
	}
	return filepath.Join(home, ".animica")
}

func DefaultConfig() Config {
	return Config{
		Network:  "devnet",
		DataDir:  DefaultDataDir(),
		BindAddr: "0.0.0.0:19111",
		Peers:    nil,
		LogLevel: "info",
		MaxPeers: 64,

		ChainID:      1,
		ShareSize:    1024,
		K:            8,
		N:            12,
		NSSize:       32,
		EpochLength:  14400,
		MempoolLimit: 16384,

		AICFBaseRate:        1.0,
		AICFFundCapPerEpoch: 1_000_000,
	}
}

func NormalizePeers(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, p := range strings.Split(token, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if err := validateAddr(cfg.BindAddr); err != nil {
		return fmt.Errorf("invalid bind_addr: %w", err)
	}
	for _, peer := range cfg.Peers {
		if err := validatePeerAddr(peer); err != nil {
			return fmt.Errorf("invalid peer %q: %w", peer, err)
		}
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.MaxPeers <= 0 {
		return errors.New("max_peers must be > 0")
	}
	if cfg.MaxPeers > 4096 {
		return errors.New("max_peers must be <= 4096")
	}
	if cfg.ChainID == 0 {
		return errors.New("chain_id must be > 0")
	}
	if cfg.ShareSize <= 0 || cfg.ShareSize&(cfg.ShareSize-1) != 0 {
		return errors.New("share_size must be a power of two")
	}
	if cfg.K <= 0 || cfg.N <= cfg.K {
		return errors.New("k must be > 0 and n must be > k")
	}
	if cfg.NSSize != 8 && cfg.NSSize != 32 {
		return errors.New("ns_size must be 8 or 32")
	}
	if cfg.EpochLength == 0 {
		return errors.New("epoch_length must be > 0")
	}
	if cfg.MempoolLimit <= 0 {
		return errors.New("mempool_limit must be > 0")
	}
	if cfg.AICFBaseRate < 0 {
		return errors.New("aicf_base_rate must be >= 0")
	}
	if cfg.AICFFundCapPerEpoch < 0 {
		return errors.New("aicf_fund_cap_per_epoch must be >= 0")
	}
	return nil
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return errors.New("missing port")
	}
	if strings.Contains(host, " ") {
		return errors.New("invalid host")
	}
	return nil
}

func validatePeerAddr(addr string) error {
	if err := validateAddr(addr); err != nil {
		return err
	}
	host, _, _ := net.SplitHostPort(addr)
	if strings.TrimSpace(host) == "" {
		return errors.New("missing host")
	}
	return nil
}
