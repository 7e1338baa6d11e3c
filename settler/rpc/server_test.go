package rpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/rs/zerolog"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
	lcdquery "github.com/Cogwheel-Validator/spectra-settler/settler/lcd_query"
	"github.com/Cogwheel-Validator/spectra-settler/settler/models"
	"github.com/Cogwheel-Validator/spectra-settler/settler/rpc"
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

type fakeReadiness struct {
	err error
}

func (f fakeReadiness) NodeInfo(ctx context.Context) (lcdquery.NodeStatus, error) {
	if f.err != nil {
		return lcdquery.NodeStatus{}, f.err
	}
	return lcdquery.NodeStatus{BaseURL: "http://lcd", Network: "Oraichain"}, nil
}

type testEnv struct {
	deployment config.DeploymentConfig
	querier    *contract.MockQuerier
	server     *httptest.Server
	client     *rpc.SettlerClient
	sender     string
}

func setup(t *testing.T, ready rpc.ReadinessChecker) testEnv {
	t.Helper()
	rpc.SetLogger(zerolog.Nop())

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

	cfg := rpc.DefaultServerConfig()
	cfg.OTelConfig = nil
	srv, err := rpc.NewServer(context.Background(), cfg, settler, ready)
	assert.NoError(t, err)

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	return testEnv{
		deployment: deployment,
		querier:    querier,
		server:     server,
		client:     rpc.NewSettlerClient(server.Client(), server.URL),
		sender:     address(t, 5),
	}
}

func TestBuyTicket(t *testing.T) {
	env := setup(t, nil)

	resp, err := env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{
		Sender: env.sender,
		Amount: "150",
	})
	assert.NoError(t, err)
	assert.Equal(t, len(resp.Messages), 3)
	assert.Equal(t, resp.Refund, "50")
	assert.Equal(t, resp.Messages[0].Wasm.Execute.ContractAddr, env.deployment.OraiswapRouter)
	assert.Equal(t, resp.Messages[1].Bank.Send.ToAddress, env.sender)
	assert.Equal(t, resp.Messages[2].Wasm.Execute.ContractAddr, env.deployment.LotteryContract)

	resp, err = env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{
		Sender: env.sender,
		Amount: "100",
	})
	assert.NoError(t, err)
	assert.Equal(t, len(resp.Messages), 2)
	assert.Equal(t, resp.Refund, "0")
}

func TestBuyTicket_ErrorCodes(t *testing.T) {
	env := setup(t, nil)

	tests := []struct {
		name   string
		sender string
		amount string
		code   connect.Code
	}{
		{name: "below price", sender: env.sender, amount: "99", code: connect.CodeFailedPrecondition},
		{name: "bad amount", sender: env.sender, amount: "1.5", code: connect.CodeInvalidArgument},
		{name: "bad sender", sender: "orai1bad", amount: "150", code: connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{
				Sender: tt.sender,
				Amount: tt.amount,
			})
			assert.Error(t, err)
			assert.Equal(t, connect.CodeOf(err), tt.code)
		})
	}

	env.querier.FailWith(errors.New("lcd down"))
	_, err := env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{Sender: env.sender, Amount: "150"})
	assert.Equal(t, connect.CodeOf(err), connect.CodeUnavailable)
}

func TestBuildSwap(t *testing.T) {
	env := setup(t, nil)
	env.querier.SetBalance(env.deployment.ContractAddress, contract.NewCoin(contract.NewUint128(80), "orai"))

	token := address(t, 9)
	resp, err := env.client.BuildSwap(context.Background(), &models.BuildSwapRequest{
		Sender: env.deployment.ContractAddress,
		Operations: []contract.SwapOperation{
			contract.NewOraiSwapOperation(contract.NewNativeAssetInfo("orai"), contract.NewTokenAssetInfo(token)),
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, len(resp.Messages), 1)
	assert.Equal(t, resp.Messages[0].Wasm.Execute.Funds[0].Amount.String(), "80")

	_, err = env.client.BuildSwap(context.Background(), &models.BuildSwapRequest{Sender: env.sender})
	assert.Equal(t, connect.CodeOf(err), connect.CodeInvalidArgument)
	assert.True(t, strings.Contains(err.Error(), "swap operations is empty"))

	bad := "-1"
	_, err = env.client.BuildSwap(context.Background(), &models.BuildSwapRequest{Sender: env.sender, Amount: &bad})
	assert.Equal(t, connect.CodeOf(err), connect.CodeInvalidArgument)
}

func TestGetConfigAndPrice(t *testing.T) {
	env := setup(t, nil)

	cfg, err := env.client.GetConfig(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cfg.Owner, env.deployment.Owner)
	assert.Equal(t, cfg.ContractAddress, env.deployment.ContractAddress)
	assert.Equal(t, cfg.NativeDenom, "orai")
	assert.Equal(t, cfg.MinimumReceive, "719577")

	price, err := env.client.GetTicketPrice(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, price.Price.Amount.String(), "100")
	assert.Equal(t, price.Price.Denom, "orai")
}

func TestConnectWireFormat(t *testing.T) {
	env := setup(t, nil)

	resp, err := http.Post(env.server.URL+rpc.GetConfigProcedure, "application/json", strings.NewReader("{}"))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, resp.Header.Get("Cache-Control"), "no-store, no-cache, must-revalidate")

	var cfg map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, cfg["lottery_contract"], env.deployment.LotteryContract)

	body := `{"sender":"` + env.sender + `","amount":"1"}`
	resp2, err := http.Post(env.server.URL+rpc.BuyTicketProcedure, "application/json", strings.NewReader(body))
	assert.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, resp2.StatusCode, http.StatusBadRequest)

	var connectErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.NewDecoder(resp2.Body).Decode(&connectErr))
	assert.Equal(t, connectErr.Code, "failed_precondition")
	assert.Equal(t, connectErr.Message, "Invalid Funds")
}

func TestServerEndpoints(t *testing.T) {
	env := setup(t, fakeReadiness{})

	resp, err := http.Get(env.server.URL + "/server/health")
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	resp, err = http.Get(env.server.URL + "/server/ready")
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	_, err = env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{Sender: env.sender, Amount: "150"})
	assert.NoError(t, err)

	resp, err = http.Get(env.server.URL + "/server/metrics")
	assert.NoError(t, err)
	metrics, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(metrics), `settler_buy_ticket_total{result="success"} 1`))
	assert.True(t, strings.Contains(string(metrics), "settler_compose_duration_seconds"))

	notReady := setup(t, fakeReadiness{err: errors.New("node down")})
	resp, err = http.Get(notReady.server.URL + "/server/ready")
	assert.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusServiceUnavailable)
}

func TestLocalSettlerClient(t *testing.T) {
	env := setup(t, nil)
	settler, err := service.NewSettler(env.deployment, env.querier, zerolog.Nop())
	assert.NoError(t, err)
	local := rpc.NewLocalSettlerClient(settler)

	resp, err := local.BuyTicket(context.Background(), &models.BuyTicketRequest{Sender: env.sender, Amount: "130"})
	assert.NoError(t, err)
	assert.Equal(t, resp.Refund, "30")

	_, err = local.BuyTicket(context.Background(), &models.BuyTicketRequest{Sender: env.sender, Amount: "10"})
	assert.Equal(t, connect.CodeOf(err), connect.CodeFailedPrecondition)

	price, err := local.GetTicketPrice(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, price.Price.Amount.String(), "100")
}

func TestValidationInterceptor(t *testing.T) {
	env := setup(t, nil)

	_, err := env.client.BuyTicket(context.Background(), &models.BuyTicketRequest{Sender: env.sender})
	assert.Equal(t, connect.CodeOf(err), connect.CodeInvalidArgument)
	assert.True(t, strings.Contains(err.Error(), "amount is required"))

	_, err = env.client.BuildSwap(context.Background(), &models.BuildSwapRequest{})
	assert.Equal(t, connect.CodeOf(err), connect.CodeInvalidArgument)
	assert.True(t, strings.Contains(err.Error(), "sender is required"))
}
