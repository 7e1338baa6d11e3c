package contract

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Binary is a raw JSON message embedded in another message. It is encoded as base64,
// which is how the chain expects nested contract messages.
type Binary []byte

// ToBinary marshals v to JSON and wraps it as Binary
func ToBinary(v any) (Binary, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}
	return Binary(bytes), nil
}

// FromBinary unmarshals the JSON held in b into v
func FromBinary(b Binary, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}
	return nil
}

// Base64 returns the standard base64 encoding of the message
func (b Binary) Base64() string {
	return base64.StdEncoding.EncodeToString(b)
}

// Coin is an amount of a native denom
type Coin struct {
	Denom  string  `json:"denom"`
	Amount Uint128 `json:"amount"`
}

// NewCoin creates a coin
func NewCoin(amount Uint128, denom string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

// CosmosMsgKind defines the type of an outbound message
type CosmosMsgKind string

const (
	CosmosMsgKindBankSend    CosmosMsgKind = "bank_send"
	CosmosMsgKindWasmExecute CosmosMsgKind = "wasm_execute"
)

// CosmosMsg is an outbound instruction handed to the chain (union type).
// Exactly one field is set.
type CosmosMsg struct {
	Bank *BankMsg `json:"bank,omitempty"`
	Wasm *WasmMsg `json:"wasm,omitempty"`
}

// BankMsg moves native coins (union type)
type BankMsg struct {
	Send *BankSend `json:"send,omitempty"`
}

// BankSend transfers coins from the contract to an address
type BankSend struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

// WasmMsg calls another contract (union type)
type WasmMsg struct {
	Execute *WasmExecute `json:"execute,omitempty"`
}

// WasmExecute invokes a contract with a JSON message and optional attached funds
type WasmExecute struct {
	ContractAddr string `json:"contract_addr"`
	Msg          Binary `json:"msg"`
	Funds        []Coin `json:"funds"`
}

// Kind reports which variant the message holds
func (m CosmosMsg) Kind() (CosmosMsgKind, error) {
	switch {
	case m.Bank != nil && m.Wasm == nil && m.Bank.Send != nil:
		return CosmosMsgKindBankSend, nil
	case m.Wasm != nil && m.Bank == nil && m.Wasm.Execute != nil:
		return CosmosMsgKindWasmExecute, nil
	default:
		return "", fmt.Errorf("cosmos message must hold exactly one variant")
	}
}

// NewBankSend builds a bank send message
func NewBankSend(toAddress string, coins ...Coin) CosmosMsg {
	amount := make([]Coin, 0, len(coins))
	amount = append(amount, coins...)
	return CosmosMsg{
		Bank: &BankMsg{
			Send: &BankSend{
				ToAddress: toAddress,
				Amount:    amount,
			},
		},
	}
}

// NewWasmExecute serializes msg and builds a contract execute message
func NewWasmExecute(contractAddr string, msg any, funds ...Coin) (CosmosMsg, error) {
	bin, err := ToBinary(msg)
	if err != nil {
		return CosmosMsg{}, err
	}
	attached := make([]Coin, 0, len(funds))
	attached = append(attached, funds...)
	return CosmosMsg{
		Wasm: &WasmMsg{
			Execute: &WasmExecute{
				ContractAddr: contractAddr,
				Msg:          bin,
				Funds:        attached,
			},
		},
	}, nil
}

// Attribute is a key/value pair attached to a response for indexers and logs
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of a contract entrypoint: the ordered outbound messages
// plus descriptive attributes.
type Response struct {
	Messages   []CosmosMsg `json:"messages"`
	Attributes []Attribute `json:"attributes"`
}

// NewResponse creates an empty response
func NewResponse() *Response {
	return &Response{
		Messages:   []CosmosMsg{},
		Attributes: []Attribute{},
	}
}

// AddMessages appends messages keeping their order
func (r *Response) AddMessages(msgs ...CosmosMsg) *Response {
	r.Messages = append(r.Messages, msgs...)
	return r
}

// AddAttribute appends a key/value attribute
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Attribute returns the first attribute value for key
func (r *Response) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}
