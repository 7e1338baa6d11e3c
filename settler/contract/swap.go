package contract

import (
	"context"
)

// SwapParams describes one router invocation.
type SwapParams struct {
	// Executor is the account that ends up offering the asset to the router
	Executor string
	// Sender is the account paying for the swap
	Sender string
	// Amount is the offer amount. When nil the balance is queried and used.
	Amount *Uint128
	// Operations must not be empty. The first operation decides the funding path.
	Operations     []SwapOperation
	MinimumReceive *Uint128
	// To overrides the recipient of the final asset
	To *string
	// Half offers half of the queried balance. Ignored when Amount is set.
	Half *bool
}

func (p SwapParams) half() bool {
	return p.Half != nil && *p.Half
}

// BuildSwapMessages returns the messages that offer the resolved amount to the router
// configured in config.
//
// Native offers attach the coins to a single router call. Token offers pull the tokens
// into the executor with transfer_from when the sender is someone else, then send them to
// the router with the swap message embedded.
//
// The amount is fixed while building, later messages never re-read balances.
func (c *Contract) BuildSwapMessages(
	ctx context.Context,
	querier Querier,
	config Config,
	params SwapParams,
) ([]CosmosMsg, error) {
	if len(params.Operations) == 0 {
		return nil, InvalidInput("swap operations is empty")
	}

	offerAsset, err := params.Operations[0].OfferAssetInfo()
	if err != nil {
		return nil, InvalidInput("first swap operation: %v", err)
	}
	kind, err := offerAsset.Kind()
	if err != nil {
		return nil, InvalidInput("offer asset: %v", err)
	}

	swapMsg := RouterExecuteMsg{
		ExecuteSwapOperations: &ExecuteSwapOperations{
			Operations:     params.Operations,
			MinimumReceive: params.MinimumReceive,
			To:             params.To,
		},
	}

	switch kind {
	case AssetInfoKindNativeToken:
		denom := offerAsset.NativeToken.Denom
		amount, err := c.resolveNativeAmount(ctx, querier, denom, params)
		if err != nil {
			return nil, err
		}

		msg, err := NewWasmExecute(config.OraiswapRouter, swapMsg, NewCoin(amount, denom))
		if err != nil {
			return nil, StdError(err)
		}

		c.logger.Debug().
			Str("denom", denom).
			Str("amount", amount.String()).
			Str("router", config.OraiswapRouter).
			Msg("Built native swap message")
		return []CosmosMsg{msg}, nil

	case AssetInfoKindToken:
		tokenContract := offerAsset.Token.ContractAddr
		amount, err := c.resolveTokenAmount(ctx, querier, tokenContract, params)
		if err != nil {
			return nil, err
		}

		messages := make([]CosmosMsg, 0, 2)
		if params.Sender != params.Executor {
			transferFrom, err := NewWasmExecute(tokenContract, Cw20ExecuteMsg{
				TransferFrom: &Cw20TransferFrom{
					Owner:     params.Sender,
					Recipient: params.Executor,
					Amount:    amount,
				},
			})
			if err != nil {
				return nil, StdError(err)
			}
			messages = append(messages, transferFrom)
		}

		embedded, err := ToBinary(swapMsg)
		if err != nil {
			return nil, StdError(err)
		}
		send, err := NewWasmExecute(tokenContract, Cw20ExecuteMsg{
			Send: &Cw20Send{
				Contract: config.OraiswapRouter,
				Amount:   amount,
				Msg:      embedded,
			},
		})
		if err != nil {
			return nil, StdError(err)
		}
		messages = append(messages, send)

		c.logger.Debug().
			Str("token", tokenContract).
			Str("amount", amount.String()).
			Int("messages", len(messages)).
			Str("router", config.OraiswapRouter).
			Msg("Built token swap messages")
		return messages, nil

	default:
		return nil, InvalidInput("unsupported offer asset kind %q", kind)
	}
}

// resolveNativeAmount queries the executor balance when no amount is given.
// Half is only honoured when the sender is the executor itself.
func (c *Contract) resolveNativeAmount(
	ctx context.Context,
	querier Querier,
	denom string,
	params SwapParams,
) (Uint128, error) {
	if params.Amount != nil {
		return *params.Amount, nil
	}
	balance, err := querier.QueryBalance(ctx, params.Executor, denom)
	if err != nil {
		return Uint128{}, StdError(err)
	}
	if params.half() {
		if params.Sender == params.Executor {
			return balance.Amount.Half(), nil
		}
		c.logger.Warn().
			Str("sender", params.Sender).
			Str("denom", denom).
			Msg("half ignored for a native offer from a foreign sender, offering the full balance")
	}
	return balance.Amount, nil
}

// resolveTokenAmount queries the sender token balance when no amount is given.
// Unlike the native path, half does not depend on who the sender is.
func (c *Contract) resolveTokenAmount(
	ctx context.Context,
	querier Querier,
	tokenContract string,
	params SwapParams,
) (Uint128, error) {
	if params.Amount != nil {
		return *params.Amount, nil
	}
	balance, err := QueryTokenBalance(ctx, querier, tokenContract, params.Sender)
	if err != nil {
		return Uint128{}, StdError(err)
	}
	if params.half() {
		return balance.Half(), nil
	}
	return balance, nil
}
