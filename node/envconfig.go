package node

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnvConfig starts from DefaultConfig and overlays any ANIMICA_*
// environment variables, optionally loading envPath first (a ".env" file
// via github.com/joho/godotenv). A missing envPath is not an error: the
// caller may simply not use one.
func LoadEnvConfig(envPath string) (Config, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return Config{}, err
			}
		}
	}

	cfg := DefaultConfig()
	cfg.Network = envOrDefault("ANIMICA_NETWORK", cfg.Network)
	cfg.DataDir = envOrDefault("ANIMICA_DATA_DIR", cfg.DataDir)
	cfg.BindAddr = envOrDefault("ANIMICA_BIND_ADDR", cfg.BindAddr)
	cfg.LogLevel = envOrDefault("ANIMICA_LOG_LEVEL", cfg.LogLevel)
	if peers := os.Getenv("ANIMICA_PEERS"); peers != "" {
		cfg.Peers = NormalizePeers(peers)
	}

	var err error
	if cfg.MaxPeers, err = envIntOrDefault("ANIMICA_MAX_PEERS", cfg.MaxPeers); err != nil {
		return Config{}, err
	}
	var chainID int
	if chainID, err = envIntOrDefault("ANIMICA_CHAIN_ID", int(cfg.ChainID)); err != nil {
		return Config{}, err
	}
	cfg.ChainID = uint64(chainID)
	if cfg.ShareSize, err = envIntOrDefault("ANIMICA_SHARE_SIZE", cfg.ShareSize); err != nil {
		return Config{}, err
	}
	if cfg.K, err = envIntOrDefault("ANIMICA_K", cfg.K); err != nil {
		return Config{}, err
	}
	if cfg.N, err = envIntOrDefault("ANIMICA_N", cfg.N); err != nil {
		return Config{}, err
	}
	if cfg.NSSize, err = envIntOrDefault("ANIMICA_NS_SIZE", cfg.NSSize); err != nil {
		return Config{}, err
	}
	var epochLen int
	if epochLen, err = envIntOrDefault("ANIMICA_EPOCH_LENGTH", int(cfg.EpochLength)); err != nil {
		return Config{}, err
	}
	cfg.EpochLength = uint64(epochLen)
	if cfg.MempoolLimit, err = envIntOrDefault("ANIMICA_MEMPOOL_LIMIT", cfg.MempoolLimit); err != nil {
		return Config{}, err
	}
	if cfg.AICFBaseRate, err = envFloatOrDefault("ANIMICA_AICF_BASE_RATE", cfg.AICFBaseRate); err != nil {
		return Config{}, err
	}
	if cfg.AICFFundCapPerEpoch, err = envFloatOrDefault("ANIMICA_AICF_FUND_CAP_PER_EPOCH", cfg.AICFFundCapPerEpoch); err != nil {
		return Config{}, err
	}

	return cfg, ValidateConfig(cfg)
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func envFloatOrDefault(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
