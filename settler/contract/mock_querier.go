package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// SmartQueryHandler answers a smart query with raw JSON
type SmartQueryHandler func(msg json.RawMessage) (json.RawMessage, error)

// MockQuerier is an in-memory Querier for tests and offline composition.
// Bank balances, cw20 balances and ticket prices are set explicitly, other smart
// queries can be answered with a handler.
type MockQuerier struct {
	mu            sync.RWMutex
	balances      map[string]map[string]Uint128
	tokenBalances map[string]map[string]Uint128
	ticketPrices  map[string]Coin
	handlers      map[string]SmartQueryHandler
	queryErr      error
}

// NewMockQuerier creates an empty mock
func NewMockQuerier() *MockQuerier {
	return &MockQuerier{
		balances:      make(map[string]map[string]Uint128),
		tokenBalances: make(map[string]map[string]Uint128),
		ticketPrices:  make(map[string]Coin),
		handlers:      make(map[string]SmartQueryHandler),
	}
}

// SetBalance sets the bank balance of address
func (m *MockQuerier) SetBalance(address string, coin Coin) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[address] == nil {
		m.balances[address] = make(map[string]Uint128)
	}
	m.balances[address][coin.Denom] = coin.Amount
	return m
}

// SetTokenBalance sets the cw20 balance of account at tokenContract
func (m *MockQuerier) SetTokenBalance(tokenContract, account string, amount Uint128) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokenBalances[tokenContract] == nil {
		m.tokenBalances[tokenContract] = make(map[string]Uint128)
	}
	m.tokenBalances[tokenContract][account] = amount
	return m
}

// SetTicketPrice sets the answer of get_ticket_price at lotteryContract
func (m *MockQuerier) SetTicketPrice(lotteryContract string, price Coin) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketPrices[lotteryContract] = price
	return m
}

// HandleSmartQuery registers a handler for any other smart query at contractAddr
func (m *MockQuerier) HandleSmartQuery(contractAddr string, handler SmartQueryHandler) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[contractAddr] = handler
	return m
}

// FailWith makes every query fail with err, nil restores normal answers
func (m *MockQuerier) FailWith(err error) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
	return m
}

func (m *MockQuerier) QueryBalance(ctx context.Context, address, denom string) (Coin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.queryErr != nil {
		return Coin{}, m.queryErr
	}
	amount := m.balances[address][denom]
	return NewCoin(amount, denom), nil
}

func (m *MockQuerier) QueryWasmSmart(ctx context.Context, contractAddr string, msg any, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.queryErr != nil {
		return m.queryErr
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize query: %w", err)
	}

	var answer any
	switch query := msg.(type) {
	case Cw20QueryMsg:
		if query.Balance == nil {
			return fmt.Errorf("unsupported cw20 query: %s", raw)
		}
		answer = Cw20BalanceResponse{Balance: m.tokenBalances[contractAddr][query.Balance.Address]}
	case LotteryQueryMsg:
		price, ok := m.ticketPrices[contractAddr]
		if query.GetTicketPrice == nil || !ok {
			return fmt.Errorf("no ticket price for contract %s", contractAddr)
		}
		answer = price
	default:
		handler, ok := m.handlers[contractAddr]
		if !ok {
			return fmt.Errorf("no smart query handler for contract %s", contractAddr)
		}
		data, err := handler(raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
