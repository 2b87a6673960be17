// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amberhq/amber/api"
	"github.com/amberhq/amber/cmd/amber/wiring"
	"github.com/amberhq/amber/pkg/bridge"
	"github.com/amberhq/amber/pkg/logger"
	"github.com/amberhq/amber/pkg/worker"
)

type ServeCommander struct {
	listen    string
	workers   uint
	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the amber API server.

The server exposes capture, retrieval, search, and bridging over HTTP.
Storage tiers are constructed from the resolved configuration; see
'amber config list' for the values in effect.`

const serveShortDesc string = "Run the amber API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on (overrides config)")
	cmd.Flags().UintVarP(&cmder.workers, "workers", "w", 0, "Number of async capture workers (0 = default)")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	cfg, err := wiring.LoadConfig(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.listen != "" {
		cfg.API.Listen = c.listen
	}

	ctx := context.Background()

	store, err := wiring.BuildStore(ctx, cfg, c.logger)
	if err != nil {
		return fmt.Errorf("building storage tiers: %w", err)
	}
	defer store.Close()

	publisher, err := wiring.BuildPublisher(cfg, c.logger)
	if err != nil {
		return fmt.Errorf("building event publisher: %w", err)
	}
	defer publisher.Close()

	extractor := wiring.BuildExtractor(cfg, store, c.logger)

	pool, err := worker.NewPool(&worker.Config{
		Extractor:  extractor,
		Publisher:  publisher,
		NumWorkers: c.workers,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	bridger := bridge.NewBuilder(store, publisher, c.logger)

	apiConfig := api.Config{
		ListenAddr: cfg.API.Listen,
	}
	apiServer := api.NewServer(apiConfig, store, extractor, pool, bridger, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		pool.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	if err := apiServer.Shutdown(); err != nil {
		c.logger.Warn("API server shutdown failed", zap.Error(err))
	}

	// Drain queued captures after the HTTP surface has stopped accepting.
	pool.Close()

	return nil
}
