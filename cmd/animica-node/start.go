package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/animicaorg/animica-node/internal/logging"
	"github.com/animicaorg/animica-node/node"
)

func newStartCmd() *cobra.Command {
	var sealInterval time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the node: open stores, seal blocks on an interval, serve JSON-RPC/WS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel)

			n, err := node.New(cfg, log)
			if err != nil {
				return fmt.Errorf("open node: %w", err)
			}
			defer func() {
				if err := n.Close(); err != nil {
					log.WithError(err).Error("close node")
				}
			}()

			server := n.Start()
			httpSrv := &http.Server{Addr: cfg.BindAddr, Handler: server}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("bind_addr", cfg.BindAddr).Info("serving JSON-RPC/WS")
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			ticker := time.NewTicker(sealInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					log.Info("shutting down")
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return httpSrv.Shutdown(shutdownCtx)
				case err := <-errCh:
					return err
				case now := <-ticker.C:
					block, receipts, err := n.Seal(uint64(now.Unix()))
					if err != nil {
						log.WithError(err).Warn("seal failed")
						continue
					}
					if len(receipts) > 0 {
						log.WithField("height", block.Height).WithField("tx_count", len(receipts)).Info("sealed block")
					}
				}
			}
		},
	}

	cmd.Flags().DurationVar(&sealInterval, "seal-interval", 2*time.Second, "interval between block sealing attempts")
	return cmd
}
