package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/rs/zerolog"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
	"github.com/Cogwheel-Validator/spectra-settler/settler/service"
)

func address(t *testing.T, seed byte) string {
	t.Helper()
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{seed}, 20), 8, 5, true)
	assert.NoError(t, err)
	addr, err := bech32.Encode("orai", conv)
	assert.NoError(t, err)
	return addr
}

type fixture struct {
	deployment config.DeploymentConfig
	querier    *contract.MockQuerier
	settler    *service.Settler
	sender     string
	token      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	deployment := config.DeploymentConfig{
		ChainID:         "Oraichain",
		ContractAddress: address(t, 1),
		Owner:           address(t, 2),
		LotteryContract: address(t, 3),
		OraiswapRouter:  address(t, 4),
	}
	querier := contract.NewMockQuerier().
		SetTicketPrice(deployment.LotteryContract, contract.NewCoin(contract.NewUint128(100), "orai"))

	settler, err := service.NewSettler(deployment, querier, zerolog.Nop())
	assert.NoError(t, err)
	return fixture{
		deployment: deployment,
		querier:    querier,
		settler:    settler,
		sender:     address(t, 5),
		token:      address(t, 6),
	}
}

func TestNewSettler_AppliesDefaults(t *testing.T) {
	f := newFixture(t)
	deployment := f.settler.Deployment()
	assert.Equal(t, deployment.NativeDenom, "orai")
	assert.Equal(t, deployment.MinimumReceive, "719577")

	cfg, err := f.settler.Config(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cfg.Owner, f.deployment.Owner)
	assert.Equal(t, cfg.LotteryContract, f.deployment.LotteryContract)
	assert.Equal(t, cfg.OraiswapRouter, f.deployment.OraiswapRouter)
}

func TestNewSettler_InvalidDeployment(t *testing.T) {
	_, err := service.NewSettler(config.DeploymentConfig{Owner: "orai1nope"}, contract.NewMockQuerier(), zerolog.Nop())
	assert.Error(t, err)
}

func TestSettler_BuyTicket(t *testing.T) {
	f := newFixture(t)

	result, err := f.settler.BuyTicket(context.Background(), f.sender, contract.NewUint128(150))
	assert.NoError(t, err)
	assert.Equal(t, result.Sender, f.sender)
	assert.Equal(t, len(result.Response.Messages), 3)

	swap := result.Response.Messages[0].Wasm.Execute
	assert.Equal(t, swap.ContractAddr, f.deployment.OraiswapRouter)
	refund := result.Response.Messages[1].Bank.Send
	assert.Equal(t, refund.ToAddress, f.sender)
	assert.Equal(t, refund.Amount[0].Amount.String(), "50")
	ticket := result.Response.Messages[2].Wasm.Execute
	assert.Equal(t, ticket.ContractAddr, f.deployment.LotteryContract)

	_, err = f.settler.BuyTicket(context.Background(), f.sender, contract.NewUint128(99))
	assert.True(t, errors.Is(err, contract.ErrInvalidFunds))

	_, err = f.settler.BuyTicket(context.Background(), "not-an-address", contract.NewUint128(150))
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))
}

func TestSettler_BuildSwap(t *testing.T) {
	f := newFixture(t)
	f.querier.SetTokenBalance(f.token, f.sender, contract.NewUint128(41))

	msgs, err := f.settler.BuildSwap(context.Background(), service.SwapRequest{
		Sender: f.sender,
		Operations: []contract.SwapOperation{
			contract.NewOraiSwapOperation(contract.NewTokenAssetInfo(f.token), contract.NewNativeAssetInfo("orai")),
		},
		Half: func() *bool { b := true; return &b }(),
	})
	assert.NoError(t, err)
	assert.Equal(t, len(msgs), 2)

	var transfer contract.Cw20ExecuteMsg
	assert.NoError(t, contract.FromBinary(msgs[0].Wasm.Execute.Msg, &transfer))
	assert.Equal(t, transfer.TransferFrom.Recipient, f.deployment.ContractAddress)
	assert.Equal(t, transfer.TransferFrom.Amount.String(), "20")

	_, err = f.settler.BuildSwap(context.Background(), service.SwapRequest{Sender: f.sender})
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))

	bad := "cosmos1xyz"
	_, err = f.settler.BuildSwap(context.Background(), service.SwapRequest{Sender: f.sender, To: &bad})
	assert.True(t, errors.Is(err, contract.ErrInvalidInput))
}

func TestSettler_TicketPrice(t *testing.T) {
	f := newFixture(t)

	price, err := f.settler.TicketPrice(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, price.Amount.String(), "100")

	f.querier.FailWith(errors.New("lcd down"))
	_, err = f.settler.TicketPrice(context.Background())
	assert.Equal(t, contract.KindOf(err), contract.ErrorKindStd)
}
