package contract_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/zeebo/assert"

	. "github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

const (
	contractAddr = "orai1settlercontract"
	ownerAddr    = "orai1owner"
	senderAddr   = "orai1sender"
	lotteryAddr  = "orai1lottery"
	routerAddr   = "orai1router"
	tokenAddr    = "orai1token"
)

var testConfig = Config{
	Owner:           ownerAddr,
	LotteryContract: lotteryAddr,
	OraiswapRouter:  routerAddr,
}

func boolPtr(b bool) *bool {
	return &b
}

func nativeOps() []SwapOperation {
	return []SwapOperation{
		NewOraiSwapOperation(NewNativeAssetInfo("orai"), NewTokenAssetInfo(lotteryAddr)),
	}
}

func tokenOps() []SwapOperation {
	return []SwapOperation{
		NewOraiSwapOperation(NewTokenAssetInfo(tokenAddr), NewNativeAssetInfo("orai")),
	}
}

// decodeExecute returns the execute payload of msg decoded into out
func decodeExecute(t *testing.T, msg CosmosMsg, out any) *WasmExecute {
	t.Helper()
	kind, err := msg.Kind()
	assert.NoError(t, err)
	assert.Equal(t, kind, CosmosMsgKindWasmExecute)
	assert.NoError(t, FromBinary(msg.Wasm.Execute.Msg, out))
	return msg.Wasm.Execute
}

func TestBuildSwapMessages_EmptyOperations(t *testing.T) {
	c := New()
	msgs, err := c.BuildSwapMessages(context.Background(), NewMockQuerier(), testConfig, SwapParams{
		Executor: contractAddr,
		Sender:   senderAddr,
	})
	assert.Error(t, err)
	assert.Nil(t, msgs)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, err.Error(), "InvalidInput: swap operations is empty")
}

func TestBuildSwapMessages_MalformedOfferAsset(t *testing.T) {
	c := New()
	ops := []SwapOperation{
		NewOraiSwapOperation(AssetInfo{}, NewNativeAssetInfo("orai")),
	}
	_, err := c.BuildSwapMessages(context.Background(), NewMockQuerier(), testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     senderAddr,
		Operations: ops,
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = c.BuildSwapMessages(context.Background(), NewMockQuerier(), testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     senderAddr,
		Operations: []SwapOperation{{}},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestBuildSwapMessages_NativeExplicitAmount(t *testing.T) {
	c := New()
	minReceive := NewUint128(719577)
	to := contractAddr
	msgs, err := c.BuildSwapMessages(context.Background(), NewMockQuerier(), testConfig, SwapParams{
		Executor:       contractAddr,
		Sender:         senderAddr,
		Amount:         Uint128Ptr(NewUint128(150)),
		Operations:     nativeOps(),
		MinimumReceive: &minReceive,
		To:             &to,
	})
	assert.NoError(t, err)
	assert.Equal(t, len(msgs), 1)

	var routerMsg RouterExecuteMsg
	execute := decodeExecute(t, msgs[0], &routerMsg)
	assert.Equal(t, execute.ContractAddr, routerAddr)
	assert.Equal(t, len(execute.Funds), 1)
	assert.Equal(t, execute.Funds[0].Denom, "orai")
	assert.Equal(t, execute.Funds[0].Amount.String(), "150")

	assert.NotNil(t, routerMsg.ExecuteSwapOperations)
	swap := routerMsg.ExecuteSwapOperations
	assert.Equal(t, len(swap.Operations), 1)
	assert.Equal(t, swap.MinimumReceive.String(), "719577")
	assert.Equal(t, *swap.To, contractAddr)
	assert.Equal(t, swap.Operations[0].OraiSwap.OfferAssetInfo.NativeToken.Denom, "orai")
	assert.Equal(t, swap.Operations[0].OraiSwap.AskAssetInfo.Token.ContractAddr, lotteryAddr)
}

func TestBuildSwapMessages_NativeBalanceResolution(t *testing.T) {
	tests := []struct {
		name       string
		sender     string
		half       *bool
		wantAmount string
	}{
		{name: "full balance", sender: contractAddr, half: nil, wantAmount: "1001"},
		{name: "half set false", sender: contractAddr, half: boolPtr(false), wantAmount: "1001"},
		{name: "half when sender is executor", sender: contractAddr, half: boolPtr(true), wantAmount: "500"},
		{name: "half ignored for foreign sender", sender: senderAddr, half: boolPtr(true), wantAmount: "1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := NewMockQuerier().
				SetBalance(contractAddr, NewCoin(NewUint128(1001), "orai")).
				SetBalance(senderAddr, NewCoin(NewUint128(5), "orai"))

			msgs, err := New().BuildSwapMessages(context.Background(), querier, testConfig, SwapParams{
				Executor:   contractAddr,
				Sender:     tt.sender,
				Operations: nativeOps(),
				Half:       tt.half,
			})
			assert.NoError(t, err)
			assert.Equal(t, len(msgs), 1)

			var routerMsg RouterExecuteMsg
			execute := decodeExecute(t, msgs[0], &routerMsg)
			assert.Equal(t, execute.Funds[0].Amount.String(), tt.wantAmount)
			assert.Nil(t, routerMsg.ExecuteSwapOperations.MinimumReceive)
			assert.Nil(t, routerMsg.ExecuteSwapOperations.To)
		})
	}
}

func TestBuildSwapMessages_TokenFromForeignSender(t *testing.T) {
	querier := NewMockQuerier().SetTokenBalance(tokenAddr, senderAddr, NewUint128(999))

	msgs, err := New().BuildSwapMessages(context.Background(), querier, testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     senderAddr,
		Operations: tokenOps(),
	})
	assert.NoError(t, err)
	assert.Equal(t, len(msgs), 2)

	var transfer Cw20ExecuteMsg
	execute := decodeExecute(t, msgs[0], &transfer)
	assert.Equal(t, execute.ContractAddr, tokenAddr)
	assert.Equal(t, len(execute.Funds), 0)
	assert.NotNil(t, transfer.TransferFrom)
	assert.Equal(t, transfer.TransferFrom.Owner, senderAddr)
	assert.Equal(t, transfer.TransferFrom.Recipient, contractAddr)
	assert.Equal(t, transfer.TransferFrom.Amount.String(), "999")

	var send Cw20ExecuteMsg
	execute = decodeExecute(t, msgs[1], &send)
	assert.Equal(t, execute.ContractAddr, tokenAddr)
	assert.Equal(t, len(execute.Funds), 0)
	assert.NotNil(t, send.Send)
	assert.Equal(t, send.Send.Contract, routerAddr)
	assert.Equal(t, send.Send.Amount.String(), "999")

	var embedded RouterExecuteMsg
	assert.NoError(t, FromBinary(send.Send.Msg, &embedded))
	assert.NotNil(t, embedded.ExecuteSwapOperations)
	assert.Equal(t, embedded.ExecuteSwapOperations.Operations[0].OraiSwap.OfferAssetInfo.Token.ContractAddr, tokenAddr)
}

func TestBuildSwapMessages_TokenFromExecutor(t *testing.T) {
	msgs, err := New().BuildSwapMessages(context.Background(), NewMockQuerier(), testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     contractAddr,
		Amount:     Uint128Ptr(NewUint128(10)),
		Operations: tokenOps(),
	})
	assert.NoError(t, err)
	assert.Equal(t, len(msgs), 1)

	var send Cw20ExecuteMsg
	decodeExecute(t, msgs[0], &send)
	assert.NotNil(t, send.Send)
	assert.Nil(t, send.TransferFrom)
	assert.Equal(t, send.Send.Amount.String(), "10")
}

func TestBuildSwapMessages_TokenHalfIgnoresSenderIdentity(t *testing.T) {
	for _, sender := range []string{senderAddr, contractAddr} {
		t.Run(sender, func(t *testing.T) {
			querier := NewMockQuerier().SetTokenBalance(tokenAddr, sender, NewUint128(7))

			msgs, err := New().BuildSwapMessages(context.Background(), querier, testConfig, SwapParams{
				Executor:   contractAddr,
				Sender:     sender,
				Operations: tokenOps(),
				Half:       boolPtr(true),
			})
			assert.NoError(t, err)

			var send Cw20ExecuteMsg
			decodeExecute(t, msgs[len(msgs)-1], &send)
			assert.Equal(t, send.Send.Amount.String(), "3")
		})
	}
}

func TestBuildSwapMessages_QueryFailure(t *testing.T) {
	upstream := errors.New("lcd unavailable")
	querier := NewMockQuerier().FailWith(upstream)

	_, err := New().BuildSwapMessages(context.Background(), querier, testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     senderAddr,
		Operations: nativeOps(),
	})
	assert.Error(t, err)
	assert.Equal(t, KindOf(err), ErrorKindStd)
	assert.True(t, errors.Is(err, upstream))

	_, err = New().BuildSwapMessages(context.Background(), querier, testConfig, SwapParams{
		Executor:   contractAddr,
		Sender:     senderAddr,
		Operations: tokenOps(),
	})
	assert.Equal(t, KindOf(err), ErrorKindStd)
	assert.True(t, errors.Is(err, upstream))
}

func TestCosmosMsg_WireFormat(t *testing.T) {
	msg := NewBankSend(senderAddr, NewCoin(NewUint128(50), "orai"))
	bytes, err := json.Marshal(msg)
	assert.NoError(t, err)
	assert.Equal(t, string(bytes), `{"bank":{"send":{"to_address":"orai1sender","amount":[{"denom":"orai","amount":"50"}]}}}`)

	buy, err := NewBuyTicketMsg(lotteryAddr)
	assert.NoError(t, err)
	bytes, err = json.Marshal(buy)
	assert.NoError(t, err)
	// {"buy_ticket":{}} in base64, funds stay an empty array
	assert.Equal(t, string(bytes), `{"wasm":{"execute":{"contract_addr":"orai1lottery","msg":"eyJidXlfdGlja2V0Ijp7fX0=","funds":[]}}}`)

	transfer, err := NewTransferTokenMsg(tokenAddr, senderAddr, NewUint128(5))
	assert.NoError(t, err)
	var cw20 Cw20ExecuteMsg
	decodeExecute(t, transfer, &cw20)
	assert.NotNil(t, cw20.Transfer)
	assert.Equal(t, cw20.Transfer.Recipient, senderAddr)
	assert.Equal(t, cw20.Transfer.Amount.String(), "5")
}

func TestAssetInfo_Kind(t *testing.T) {
	kind, err := NewNativeAssetInfo("orai").Kind()
	assert.NoError(t, err)
	assert.Equal(t, kind, AssetInfoKindNativeToken)

	kind, err = NewTokenAssetInfo(tokenAddr).Kind()
	assert.NoError(t, err)
	assert.Equal(t, kind, AssetInfoKindToken)

	_, err = AssetInfo{}.Kind()
	assert.Error(t, err)

	_, err = AssetInfo{NativeToken: &NativeToken{Denom: "orai"}, Token: &Token{ContractAddr: tokenAddr}}.Kind()
	assert.Error(t, err)

	_, err = NewNativeAssetInfo("").Kind()
	assert.Error(t, err)

	bytes, err := json.Marshal(NewOraiSwapOperation(NewNativeAssetInfo("orai"), NewTokenAssetInfo(tokenAddr)))
	assert.NoError(t, err)
	assert.Equal(t, string(bytes), `{"orai_swap":{"offer_asset_info":{"native_token":{"denom":"orai"}},"ask_asset_info":{"token":{"contract_addr":"orai1token"}}}}`)
}
