package models

import (
	"errors"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

// BuyTicketRequest - POST body
type BuyTicketRequest struct {
	Sender string `json:"sender"` // e.g., "orai1..."
	Amount string `json:"amount"` // native amount offered, e.g., "1000000"
}

func (r *BuyTicketRequest) Validate() error {
	if r.Sender == "" {
		return errors.New("sender is required")
	}
	if r.Amount == "" {
		return errors.New("amount is required")
	}
	return nil
}

// BuyTicketResponse carries the ordered messages the caller signs and broadcasts
type BuyTicketResponse struct {
	Messages   []contract.CosmosMsg `json:"messages"`
	Attributes []contract.Attribute `json:"attributes"`
	// Refund is the amount sent back to the sender, "0" when the amount equals the price
	Refund string `json:"refund"`
}

// BuildSwapRequest composes a router swap on behalf of Sender
type BuildSwapRequest struct {
	Sender         string                   `json:"sender"`
	Operations     []contract.SwapOperation `json:"operations"`
	Amount         *string                  `json:"amount,omitempty"`          // queried balance when empty
	MinimumReceive *string                  `json:"minimum_receive,omitempty"` // no floor when empty
	To             *string                  `json:"to,omitempty"`
	Half           *bool                    `json:"half,omitempty"`
}

func (r *BuildSwapRequest) Validate() error {
	if r.Sender == "" {
		return errors.New("sender is required")
	}
	return nil
}

type BuildSwapResponse struct {
	Messages []contract.CosmosMsg `json:"messages"`
}

type GetConfigRequest struct{}

// GetConfigResponse is the contract config plus the deployment constants
type GetConfigResponse struct {
	Owner           string `json:"owner"`
	LotteryContract string `json:"lottery_contract"`
	OraiswapRouter  string `json:"oraiswap_router"`
	ContractAddress string `json:"contract_address"`
	ChainID         string `json:"chain_id"`
	NativeDenom     string `json:"native_denom"`
	MinimumReceive  string `json:"minimum_receive"`
}

type GetTicketPriceRequest struct{}

type GetTicketPriceResponse struct {
	Price contract.Coin `json:"price"`
}
