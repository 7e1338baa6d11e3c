package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	"github.com/Cogwheel-Validator/spectra-settler/settler/rpc"
	"github.com/Cogwheel-Validator/spectra-settler/settler/service"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var certFile, keyFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the settler RPC server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, certFile, keyFile)
		},
	}

	cmd.Flags().StringVar(&certFile, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&keyFile, "tls-key", "", "TLS key file")
	cmd.MarkFlagsRequiredTogether("tls-cert", "tls-key")

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, certFile, keyFile string) error {
	log.Info().
		Str("rpc_config", opts.ConfigRPC).
		Str("deployment", opts.ConfigDeployment).
		Msg("Starting Spectra's Settler")

	rpcConfig, err := opts.loadRPCConfig()
	if err != nil {
		return err
	}
	deployment, err := opts.loadDeployment()
	if err != nil {
		return err
	}

	lcd, err := newLcdClient(rpcConfig)
	if err != nil {
		return err
	}
	defer lcd.Close()

	settler, err := service.NewSettler(*deployment, lcd, log)
	if err != nil {
		return err
	}
	log.Info().
		Str("chain_id", deployment.ChainID).
		Str("contract", deployment.ContractAddress).
		Str("lottery", deployment.LotteryContract).
		Str("router", deployment.OraiswapRouter).
		Msg("Settler instantiated")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server, err := rpc.NewServer(ctx, buildServerConfig(rpcConfig), settler, lcd)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		var err error
		if certFile != "" {
			err = server.StartTLS(certFile, keyFile)
		} else {
			err = server.Start()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// buildServerConfig converts the loaded RPCSettlerConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.RPCSettlerConfig) *rpc.ServerConfig {
	serverConfig := rpc.DefaultServerConfig()
	serverConfig.Address = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	serverConfig.AllowedOrigins = cfg.AllowedOrigins
	serverConfig.EnableMetrics = cfg.UsePrometheus
	serverConfig.RatePerMinute = cfg.RatePerMinute
	serverConfig.MaxConcurrentRequests = cfg.MaxConcurrentRequests
	serverConfig.OTelConfig = rpc.OTelConfigFromRPCConfig(cfg)
	return serverConfig
}
