package contract

// Messages understood by the contracts this one talks to. Only the variants
// that are actually sent are modelled.

// RouterExecuteMsg is the oraiswap router execute message (union type)
type RouterExecuteMsg struct {
	ExecuteSwapOperations *ExecuteSwapOperations `json:"execute_swap_operations,omitempty"`
}

// ExecuteSwapOperations runs the operations in order and forwards the final asset to To
type ExecuteSwapOperations struct {
	Operations     []SwapOperation `json:"operations"`
	MinimumReceive *Uint128        `json:"minimum_receive,omitempty"`
	To             *string         `json:"to,omitempty"`
}

// Cw20ExecuteMsg covers the cw20 calls used for token offers (union type)
type Cw20ExecuteMsg struct {
	Transfer     *Cw20Transfer     `json:"transfer,omitempty"`
	TransferFrom *Cw20TransferFrom `json:"transfer_from,omitempty"`
	Send         *Cw20Send         `json:"send,omitempty"`
}

// Cw20Transfer moves tokens from the caller to recipient
type Cw20Transfer struct {
	Recipient string  `json:"recipient"`
	Amount    Uint128 `json:"amount"`
}

// Cw20TransferFrom moves tokens using an allowance granted by owner
type Cw20TransferFrom struct {
	Owner     string  `json:"owner"`
	Recipient string  `json:"recipient"`
	Amount    Uint128 `json:"amount"`
}

// Cw20Send moves tokens to a contract and triggers its receive hook with Msg
type Cw20Send struct {
	Contract string  `json:"contract"`
	Amount   Uint128 `json:"amount"`
	Msg      Binary  `json:"msg"`
}

// Cw20QueryMsg is the cw20 balance query (union type)
type Cw20QueryMsg struct {
	Balance *Cw20BalanceQuery `json:"balance,omitempty"`
}

type Cw20BalanceQuery struct {
	Address string `json:"address"`
}

// Cw20BalanceResponse is the answer to Cw20QueryMsg.Balance
type Cw20BalanceResponse struct {
	Balance Uint128 `json:"balance"`
}

// LotteryExecuteMsg is the ticket issuer execute message (union type)
type LotteryExecuteMsg struct {
	BuyTicket *struct{} `json:"buy_ticket,omitempty"`
}

// LotteryQueryMsg is the ticket issuer query message (union type)
type LotteryQueryMsg struct {
	GetTicketPrice *struct{} `json:"get_ticket_price,omitempty"`
}
