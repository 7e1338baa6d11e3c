package contract

import (
	"context"
)

// BuyTicket swaps amount of the native denom into the lottery token, refunds anything above
// the ticket price to the sender and buys one ticket.
//
// Messages are ordered: swap, refund (only when amount is above the price), buy ticket.
// When amount is below the price nothing is returned and the call fails with InvalidFunds.
func (c *Contract) BuyTicket(
	ctx context.Context,
	deps Deps,
	env Env,
	info MessageInfo,
	amount Uint128,
) (*Response, error) {
	config, err := LoadConfig(deps.Storage)
	if err != nil {
		return nil, StdError(err)
	}

	contractAddr := env.Contract.Address
	operations := []SwapOperation{
		NewOraiSwapOperation(
			NewNativeAssetInfo(c.nativeDenom),
			NewTokenAssetInfo(config.LotteryContract),
		),
	}

	swapMsgs, err := c.BuildSwapMessages(ctx, deps.Querier, config, SwapParams{
		Executor:       contractAddr,
		Sender:         info.Sender,
		Amount:         &amount,
		Operations:     operations,
		MinimumReceive: Uint128Ptr(c.minimumReceive),
		To:             &contractAddr,
	})
	if err != nil {
		return nil, err
	}

	price, err := QueryTicketPrice(ctx, deps.Querier, config.LotteryContract)
	if err != nil {
		return nil, StdError(err)
	}
	if price.Denom != "" && price.Denom != c.nativeDenom {
		c.logger.Warn().
			Str("price_denom", price.Denom).
			Str("native_denom", c.nativeDenom).
			Msg("Ticket price is quoted in a different denom")
	}
	ticketPrice := price.Amount

	if amount.LessThan(ticketPrice) {
		c.logger.Debug().
			Str("sender", info.Sender).
			Str("amount", amount.String()).
			Str("price", ticketPrice.String()).
			Msg("Amount does not cover the ticket price")
		return nil, InvalidFunds()
	}

	messages := swapMsgs
	if amount.GreaterThan(ticketPrice) {
		change, err := amount.CheckedSub(ticketPrice)
		if err != nil {
			return nil, StdError(err)
		}
		messages = append(messages, NewBankSend(info.Sender, NewCoin(change, c.nativeDenom)))
	}

	buyMsg, err := NewBuyTicketMsg(config.LotteryContract, NewCoin(ticketPrice, c.nativeDenom))
	if err != nil {
		return nil, err
	}
	messages = append(messages, buyMsg)

	c.logger.Info().
		Str("sender", info.Sender).
		Str("amount", amount.String()).
		Str("price", ticketPrice.String()).
		Int("messages", len(messages)).
		Msg("Composed ticket purchase")

	return NewResponse().
		AddMessages(messages...).
		AddAttribute("action", "swap_and_buy_ticket").
		AddAttribute("amount", amount.String()), nil
}

// NewBuyTicketMsg builds a buy_ticket call on the lottery paying with funds
func NewBuyTicketMsg(lotteryContract string, funds ...Coin) (CosmosMsg, error) {
	msg, err := NewWasmExecute(lotteryContract, LotteryExecuteMsg{BuyTicket: &struct{}{}}, funds...)
	if err != nil {
		return CosmosMsg{}, StdError(err)
	}
	return msg, nil
}

// NewTransferTokenMsg builds a cw20 transfer of amount to recipient
func NewTransferTokenMsg(tokenContract, recipient string, amount Uint128) (CosmosMsg, error) {
	msg, err := NewWasmExecute(tokenContract, Cw20ExecuteMsg{
		Transfer: &Cw20Transfer{
			Recipient: recipient,
			Amount:    amount,
		},
	})
	if err != nil {
		return CosmosMsg{}, StdError(err)
	}
	return msg, nil
}
