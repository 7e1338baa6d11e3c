// Package contract composes the messages of the ticket settlement contract.
//
// The contract converts native tokens into the lottery token through the oraiswap router,
// checks the amount covers the ticket price, refunds the change and buys the ticket.
// It never holds state besides its configuration: every entrypoint returns an ordered list
// of outbound messages which the chain executes atomically.
package contract

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

const (
	// DefaultNativeDenom is the denom offered to the router and used to pay for tickets
	DefaultNativeDenom = "orai"
	// DefaultMinimumReceive is the expected router output for one ticket worth of orai
	DefaultMinimumReceive uint64 = 719577
)

// Contract holds the deployment constants. It carries no mutable state,
// the configuration lives in Storage.
type Contract struct {
	nativeDenom    string
	minimumReceive Uint128
	logger         zerolog.Logger
}

// Option configures a Contract
type Option func(*Contract)

// WithNativeDenom overrides the native denom
func WithNativeDenom(denom string) Option {
	return func(c *Contract) {
		c.nativeDenom = denom
	}
}

// WithMinimumReceive overrides the minimum receive floor of the swap
func WithMinimumReceive(amount Uint128) Option {
	return func(c *Contract) {
		c.minimumReceive = amount
	}
}

// WithLogger sets the logger, the contract is silent by default
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Contract) {
		c.logger = logger.With().Str("component", "settler-contract").Logger()
	}
}

// New creates a contract with the given options
func New(opts ...Option) *Contract {
	c := &Contract{
		nativeDenom:    DefaultNativeDenom,
		minimumReceive: NewUint128(DefaultMinimumReceive),
		logger:         zerolog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NativeDenom returns the configured native denom
func (c *Contract) NativeDenom() string {
	return c.nativeDenom
}

// MinimumReceive returns the configured minimum receive floor
func (c *Contract) MinimumReceive() Uint128 {
	return c.minimumReceive
}

// InstantiateMsg carries the three addresses stored at deployment
type InstantiateMsg struct {
	Owner           string `json:"owner"`
	LotteryContract string `json:"lottery_contract"`
	OraiswapRouter  string `json:"oraiswap_router"`
}

// ExecuteMsg is the execute entrypoint message (union type)
type ExecuteMsg struct {
	BuyTicket *BuyTicketMsg `json:"buy_ticket,omitempty"`
}

// BuyTicketMsg swaps Amount of the native denom and buys one ticket
type BuyTicketMsg struct {
	Amount Uint128 `json:"amount"`
}

// QueryMsg is the query entrypoint message (union type)
type QueryMsg struct {
	Config *struct{} `json:"config,omitempty"`
}

// ConfigResponse is the answer to QueryMsg.Config
type ConfigResponse struct {
	Owner           string `json:"owner"`
	LotteryContract string `json:"lottery_contract"`
	OraiswapRouter  string `json:"oraiswap_router"`
}

// Instantiate validates and stores the configuration
func (c *Contract) Instantiate(
	ctx context.Context,
	deps Deps,
	env Env,
	info MessageInfo,
	msg InstantiateMsg,
) (*Response, error) {
	owner, err := deps.API.AddrValidate(msg.Owner)
	if err != nil {
		return nil, InvalidInput("owner: %v", err)
	}
	lottery, err := deps.API.AddrValidate(msg.LotteryContract)
	if err != nil {
		return nil, InvalidInput("lottery_contract: %v", err)
	}
	router, err := deps.API.AddrValidate(msg.OraiswapRouter)
	if err != nil {
		return nil, InvalidInput("oraiswap_router: %v", err)
	}

	config := Config{
		Owner:           owner,
		LotteryContract: lottery,
		OraiswapRouter:  router,
	}
	if err := SaveConfig(deps.Storage, config); err != nil {
		return nil, StdError(err)
	}

	c.logger.Info().
		Str("contract", env.Contract.Address).
		Str("sender", info.Sender).
		Str("owner", config.Owner).
		Str("lottery_contract", config.LotteryContract).
		Str("oraiswap_router", config.OraiswapRouter).
		Msg("Contract instantiated")

	return NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("owner", config.Owner).
		AddAttribute("lottery_contract", config.LotteryContract).
		AddAttribute("oraiswap_router", config.OraiswapRouter), nil
}

// Execute dispatches an execute message
func (c *Contract) Execute(
	ctx context.Context,
	deps Deps,
	env Env,
	info MessageInfo,
	msg ExecuteMsg,
) (*Response, error) {
	switch {
	case msg.BuyTicket != nil:
		return c.BuyTicket(ctx, deps, env, info, msg.BuyTicket.Amount)
	default:
		return nil, InvalidInput("unknown execute message")
	}
}

// Query dispatches a query message and returns the JSON encoded answer
func (c *Contract) Query(ctx context.Context, deps Deps, env Env, msg QueryMsg) (Binary, error) {
	switch {
	case msg.Config != nil:
		resp, err := c.QueryConfig(deps)
		if err != nil {
			return nil, err
		}
		bin, err := ToBinary(resp)
		if err != nil {
			return nil, StdError(err)
		}
		return bin, nil
	default:
		return nil, InvalidInput("unknown query message")
	}
}

// QueryConfig returns the stored addresses as strings
func (c *Contract) QueryConfig(deps Deps) (ConfigResponse, error) {
	config, err := LoadConfig(deps.Storage)
	if err != nil {
		return ConfigResponse{}, StdError(err)
	}
	return ConfigResponse{
		Owner:           config.Owner,
		LotteryContract: config.LotteryContract,
		OraiswapRouter:  config.OraiswapRouter,
	}, nil
}
