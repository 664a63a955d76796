package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/animicaorg/animica-node/node"
)

// cliFlags holds the node's top-level settings (network, datadir, bind,
// log-level, peers, max-peers) as cobra persistent flags shared by every
// subcommand.
type cliFlags struct {
	envFile  string
	network  string
	dataDir  string
	bindAddr string
	logLevel string
	peers    []string
	maxPeers int
}

var flags cliFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "animica-node",
		Short: "Animica chain node: sealer, DA store, AICF registry, JSON-RPC/WS server",
	}

	defaults := node.DefaultConfig()
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "optional .env file to load before flags/defaults")
	root.PersistentFlags().StringVar(&flags.network, "network", defaults.Network, "network name (devnet/testnet/mainnet)")
	root.PersistentFlags().StringVar(&flags.dataDir, "datadir", defaults.DataDir, "node data directory")
	root.PersistentFlags().StringVar(&flags.bindAddr, "bind", defaults.BindAddr, "bind address host:port")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	root.PersistentFlags().StringSliceVar(&flags.peers, "peer", nil, "bootstrap peer host:port (repeatable)")
	root.PersistentFlags().IntVar(&flags.maxPeers, "max-peers", defaults.MaxPeers, "max connected peers")

	root.AddCommand(newStartCmd())
	root.AddCommand(newGenesisCmd())
	root.AddCommand(newKeygenCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// loadConfig overlays the persistent flags onto LoadEnvConfig's result, so
// an explicit flag always wins over an environment variable or the .env
// file, which in turn wins over DefaultConfig.
func loadConfig(cmd *cobra.Command) (node.Config, error) {
	cfg, err := node.LoadEnvConfig(flags.envFile)
	if err != nil {
		return node.Config{}, err
	}

	if cmd.Flags().Changed("network") {
		cfg.Network = flags.network
	}
	if cmd.Flags().Changed("datadir") {
		cfg.DataDir = flags.dataDir
	}
	if cmd.Flags().Changed("bind") {
		cfg.BindAddr = flags.bindAddr
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("max-peers") {
		cfg.MaxPeers = flags.maxPeers
	}
	if len(flags.peers) > 0 {
		cfg.Peers = node.NormalizePeers(flags.peers...)
	}

	if err := node.ValidateConfig(cfg); err != nil {
		return node.Config{}, err
	}
	return cfg, nil
}
