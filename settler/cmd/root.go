package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	lcdquery "github.com/Cogwheel-Validator/spectra-settler/settler/lcd_query"
	"github.com/Cogwheel-Validator/spectra-settler/settler/models"
	"github.com/Cogwheel-Validator/spectra-settler/settler/rpc"
	"github.com/Cogwheel-Validator/spectra-settler/settler/service"
)

// envConfig selects SETTLER_* environment variables instead of a config file
const envConfig = "env"

// rootOptions holds global flags for all commands
type rootOptions struct {
	ConfigRPC        string
	ConfigDeployment string
	Server           string
	Timeout          time.Duration
}

// composer is implemented by the remote client and by the in-process settler
type composer interface {
	BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.BuyTicketResponse, error)
	BuildSwap(ctx context.Context, req *models.BuildSwapRequest) (*models.BuildSwapResponse, error)
	GetConfig(ctx context.Context) (*models.GetConfigResponse, error)
	GetTicketPrice(ctx context.Context) (*models.GetTicketPriceResponse, error)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "settler",
		Short: "Spectra settler",
		Long: `Composes lottery ticket purchases on Oraichain: swap orai into the lottery
token through the oraiswap router, refund the change and buy the ticket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigRPC, "config-rpc", "./rpc-config.toml",
		`rpc config file, "env" reads SETTLER_* variables`)
	cmd.PersistentFlags().StringVar(&opts.ConfigDeployment, "config-deployment", "./deployment.toml",
		"deployment file (toml, json or yaml)")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "",
		"compose on a running settler server instead of querying the chain directly")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "command timeout")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newBuyTicketCommand(opts))
	cmd.AddCommand(newSwapCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newPriceCommand(opts))
	cmd.AddCommand(newFetchDeploymentCommand(opts))

	return cmd
}

func (o *rootOptions) rpcConfigPath() *string {
	if o.ConfigRPC == envConfig {
		return nil
	}
	return &o.ConfigRPC
}

func (o *rootOptions) loadRPCConfig() (*config.RPCSettlerConfig, error) {
	rpcConfig, err := config.LoadRPCSettlerConfig(o.rpcConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load RPC config: %w", err)
	}
	return rpcConfig, nil
}

func (o *rootOptions) loadDeployment() (*config.DeploymentConfig, error) {
	deployment, err := config.NewDefaultDeploymentLoader().LoadFromFile(o.ConfigDeployment)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment: %w", err)
	}
	return deployment, nil
}

// newLcdClient builds the chain client, the first url is the primary endpoint
func newLcdClient(cfg *config.RPCSettlerConfig) (*lcdquery.LcdQueryClient, error) {
	failover := lcdquery.DefaultFailoverConfig()
	failover.MaxRetries = cfg.LcdMaxRetries
	if cfg.LcdRetryDelay > 0 {
		failover.RetryDelay = cfg.LcdRetryDelay
	}
	if cfg.LcdTimeout > 0 {
		failover.Timeout = cfg.LcdTimeout
	}
	return lcdquery.NewLcdQueryClientWithFailover(cfg.LcdURLs[0], cfg.LcdURLs[1:], failover)
}

// newComposer returns the remote client when --server is set. The returned
// close function releases the chain client of the local composer.
func (o *rootOptions) newComposer() (composer, func(), error) {
	if o.Server != "" {
		client := rpc.NewSettlerClient(&http.Client{Timeout: o.Timeout}, o.Server)
		return client, func() {}, nil
	}

	rpcConfig, err := o.loadRPCConfig()
	if err != nil {
		return nil, nil, err
	}
	deployment, err := o.loadDeployment()
	if err != nil {
		return nil, nil, err
	}
	lcd, err := newLcdClient(rpcConfig)
	if err != nil {
		return nil, nil, err
	}
	settler, err := service.NewSettler(*deployment, lcd, log)
	if err != nil {
		lcd.Close()
		return nil, nil, err
	}
	return rpc.NewLocalSettlerClient(settler), lcd.Close, nil
}

// runComposer runs fn with a composer and prints its result as JSON
func runComposer(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c composer) (any, error)) error {
	c, closeFn, err := opts.newComposer()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	result, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
