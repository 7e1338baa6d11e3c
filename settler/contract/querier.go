package contract

import (
	"context"
	"fmt"
)

// Querier reads chain state on behalf of the contract. Every answer reflects the same
// state snapshot for the duration of one invocation.
type Querier interface {
	// QueryBalance returns the bank balance of address in denom
	QueryBalance(ctx context.Context, address, denom string) (Coin, error)
	// QueryWasmSmart sends msg to a contract query entrypoint and decodes the answer into out
	QueryWasmSmart(ctx context.Context, contractAddr string, msg any, out any) error
}

// QueryTokenBalance returns the cw20 balance of account at tokenContract
func QueryTokenBalance(ctx context.Context, querier Querier, tokenContract, account string) (Uint128, error) {
	var resp Cw20BalanceResponse
	msg := Cw20QueryMsg{Balance: &Cw20BalanceQuery{Address: account}}
	if err := querier.QueryWasmSmart(ctx, tokenContract, msg, &resp); err != nil {
		return Uint128{}, fmt.Errorf("failed to query token balance of %s at %s: %w", account, tokenContract, err)
	}
	return resp.Balance, nil
}

// QueryTicketPrice returns the current ticket price of the lottery contract
func QueryTicketPrice(ctx context.Context, querier Querier, lotteryContract string) (Coin, error) {
	var price Coin
	msg := LotteryQueryMsg{GetTicketPrice: &struct{}{}}
	if err := querier.QueryWasmSmart(ctx, lotteryContract, msg, &price); err != nil {
		return Coin{}, fmt.Errorf("failed to query ticket price at %s: %w", lotteryContract, err)
	}
	return price, nil
}
