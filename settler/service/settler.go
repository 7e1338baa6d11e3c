// Package service binds the settlement contract to a deployment and a chain querier.
//
// A Settler instantiates the contract once into memory from the deployment config. After that
// it is read-only and safe for concurrent use by the RPC server and the CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

// Settler composes settlement messages for one deployment
type Settler struct {
	contract   *contract.Contract
	deps       contract.Deps
	deployment config.DeploymentConfig
	logger     zerolog.Logger
}

// BuyTicketResult is the composed purchase
type BuyTicketResult struct {
	Sender   string
	Amount   contract.Uint128
	Response *contract.Response
}

// SwapRequest describes a standalone swap composed on behalf of Sender
type SwapRequest struct {
	Sender         string
	Amount         *contract.Uint128
	Operations     []contract.SwapOperation
	MinimumReceive *contract.Uint128
	To             *string
	Half           *bool
}

// NewSettler instantiates the contract described by deployment
func NewSettler(
	deployment config.DeploymentConfig,
	querier contract.Querier,
	logger zerolog.Logger,
) (*Settler, error) {
	deployment.ApplyDefaults()
	if err := deployment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment: %w", err)
	}
	minimumReceive, err := deployment.MinimumReceiveAmount()
	if err != nil {
		return nil, fmt.Errorf("invalid minimum receive: %w", err)
	}

	logger = logger.With().Str("component", "settler").Logger()
	c := contract.New(
		contract.WithNativeDenom(deployment.NativeDenom),
		contract.WithMinimumReceive(minimumReceive),
		contract.WithLogger(logger),
	)

	s := &Settler{
		contract: c,
		deps: contract.Deps{
			Storage: contract.NewMemoryStorage(),
			Querier: querier,
			API:     contract.Bech32API{Prefix: deployment.Bech32Prefix},
		},
		deployment: deployment,
		logger:     logger,
	}

	_, err = c.Instantiate(context.Background(), s.deps, s.env(), contract.MessageInfo{Sender: deployment.Owner},
		deployment.InstantiateMsg())
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate contract: %w", err)
	}
	return s, nil
}

func (s *Settler) env() contract.Env {
	return contract.Env{
		Block: contract.BlockInfo{
			Time:    time.Now().UTC(),
			ChainID: s.deployment.ChainID,
		},
		Contract: contract.ContractInfo{Address: s.deployment.ContractAddress},
	}
}

// Deployment returns the deployment with defaults applied
func (s *Settler) Deployment() config.DeploymentConfig {
	return s.deployment
}

// BuyTicket composes the ticket purchase of sender paying amount
func (s *Settler) BuyTicket(ctx context.Context, sender string, amount contract.Uint128) (*BuyTicketResult, error) {
	if _, err := s.deps.API.AddrValidate(sender); err != nil {
		return nil, contract.InvalidInput("sender: %v", err)
	}

	resp, err := s.contract.Execute(ctx, s.deps, s.env(), contract.MessageInfo{Sender: sender}, contract.ExecuteMsg{
		BuyTicket: &contract.BuyTicketMsg{Amount: amount},
	})
	if err != nil {
		return nil, err
	}
	return &BuyTicketResult{Sender: sender, Amount: amount, Response: resp}, nil
}

// BuildSwap composes a swap through the configured router with the contract as executor
func (s *Settler) BuildSwap(ctx context.Context, req SwapRequest) ([]contract.CosmosMsg, error) {
	if _, err := s.deps.API.AddrValidate(req.Sender); err != nil {
		return nil, contract.InvalidInput("sender: %v", err)
	}
	if req.To != nil {
		if _, err := s.deps.API.AddrValidate(*req.To); err != nil {
			return nil, contract.InvalidInput("to: %v", err)
		}
	}

	cfg, err := contract.LoadConfig(s.deps.Storage)
	if err != nil {
		return nil, contract.StdError(err)
	}
	return s.contract.BuildSwapMessages(ctx, s.deps.Querier, cfg, contract.SwapParams{
		Executor:       s.deployment.ContractAddress,
		Sender:         req.Sender,
		Amount:         req.Amount,
		Operations:     req.Operations,
		MinimumReceive: req.MinimumReceive,
		To:             req.To,
		Half:           req.Half,
	})
}

// Config answers the config query of the contract
func (s *Settler) Config(ctx context.Context) (contract.ConfigResponse, error) {
	bin, err := s.contract.Query(ctx, s.deps, s.env(), contract.QueryMsg{Config: &struct{}{}})
	if err != nil {
		return contract.ConfigResponse{}, err
	}
	var resp contract.ConfigResponse
	if err := contract.FromBinary(bin, &resp); err != nil {
		return contract.ConfigResponse{}, contract.StdError(err)
	}
	return resp, nil
}

// TicketPrice queries the live ticket price of the lottery
func (s *Settler) TicketPrice(ctx context.Context) (contract.Coin, error) {
	price, err := contract.QueryTicketPrice(ctx, s.deps.Querier, s.deployment.LotteryContract)
	if err != nil {
		return contract.Coin{}, contract.StdError(err)
	}
	return price, nil
}
