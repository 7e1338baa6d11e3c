package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/rs/zerolog"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
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

func testDeployment(t *testing.T) config.DeploymentConfig {
	return config.DeploymentConfig{
		ChainID:         "Oraichain",
		ContractAddress: address(t, 1),
		Owner:           address(t, 2),
		LotteryContract: address(t, 3),
		OraiswapRouter:  address(t, 4),
	}
}

func startServer(t *testing.T, deployment config.DeploymentConfig) string {
	t.Helper()
	rpc.SetLogger(zerolog.Nop())

	querier := contract.NewMockQuerier().
		SetTicketPrice(deployment.LotteryContract, contract.NewCoin(contract.NewUint128(100), "orai"))
	settler, err := service.NewSettler(deployment, querier, zerolog.Nop())
	assert.NoError(t, err)

	cfg := rpc.DefaultServerConfig()
	cfg.OTelConfig = nil
	srv, err := rpc.NewServer(context.Background(), cfg, settler, nil)
	assert.NoError(t, err)

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)
	return server.URL
}

func execute(args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "buy-ticket", "swap", "config", "price", "fetch-deployment"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			assert.NoError(t, err)
			assert.Equal(t, sub.Name(), name)
		})
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("server"))
	assert.Equal(t, cmd.PersistentFlags().Lookup("config-rpc").DefValue, "./rpc-config.toml")
}

func TestBuyTicket_RemoteServer(t *testing.T) {
	url := startServer(t, testDeployment(t))
	sender := address(t, 5)

	out, err := execute("buy-ticket", "--server", url, "--sender", sender, "--amount", "150")
	assert.NoError(t, err)

	var resp models.BuyTicketResponse
	assert.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, len(resp.Messages), 3)
	assert.Equal(t, resp.Refund, "50")
	assert.Equal(t, resp.Messages[1].Bank.Send.ToAddress, sender)

	_, err = execute("buy-ticket", "--server", url, "--sender", sender, "--amount", "99")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Invalid Funds"))
}

func TestConfigAndPrice_RemoteServer(t *testing.T) {
	deployment := testDeployment(t)
	url := startServer(t, deployment)

	out, err := execute("config", "--server", url)
	assert.NoError(t, err)
	var cfg models.GetConfigResponse
	assert.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, cfg.LotteryContract, deployment.LotteryContract)

	out, err = execute("price", "--server", url)
	assert.NoError(t, err)
	var price models.GetTicketPriceResponse
	assert.NoError(t, json.Unmarshal([]byte(out), &price))
	assert.Equal(t, price.Price.Amount.String(), "100")
}

func TestSwap_Flags(t *testing.T) {
	deployment := testDeployment(t)
	url := startServer(t, deployment)
	token := address(t, 9)

	out, err := execute("swap", "--server", url,
		"--sender", address(t, 5),
		"--offer-native", "orai",
		"--ask-token", token,
		"--amount", "40",
	)
	assert.NoError(t, err)
	var resp models.BuildSwapResponse
	assert.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, len(resp.Messages), 1)
	assert.Equal(t, resp.Messages[0].Wasm.Execute.ContractAddr, deployment.OraiswapRouter)
	assert.Equal(t, resp.Messages[0].Wasm.Execute.Funds[0].Amount.String(), "40")

	_, err = execute("swap", "--server", url, "--sender", address(t, 5), "--ask-token", token)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "a native denom or a token contract is required"))

	_, err = execute("swap", "--server", url, "--sender", address(t, 5),
		"--offer-native", "orai", "--offer-token", token, "--ask-token", token)
	assert.Error(t, err)
}

func TestBuyTicket_LocalNeedsConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")
	_, err := execute("buy-ticket", "--config-rpc", missing, "--sender", address(t, 5), "--amount", "150")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to load RPC config"))
}

func TestFetchDeployment_Command(t *testing.T) {
	deployment := testDeployment(t)
	src := filepath.Join(t.TempDir(), "deployment.toml")
	content := fmt.Sprintf("contract_address = %q\nowner = %q\nlottery_contract = %q\noraiswap_router = %q\n",
		deployment.ContractAddress, deployment.Owner, deployment.LotteryContract, deployment.OraiswapRouter)
	assert.NoError(t, os.WriteFile(src, []byte(content), 0o600))

	dst := filepath.Join(t.TempDir(), "fetched.toml")
	out, err := execute("fetch-deployment", "--src", src, "--dst", dst)
	assert.NoError(t, err)

	var fetched config.DeploymentConfig
	assert.NoError(t, json.Unmarshal([]byte(out), &fetched))
	assert.Equal(t, fetched.ContractAddress, deployment.ContractAddress)
	assert.Equal(t, fetched.NativeDenom, "orai")

	_, err = os.Stat(dst)
	assert.NoError(t, err)
}

func TestBuildServerConfig(t *testing.T) {
	cfg := &config.RPCSettlerConfig{
		Port:                  9090,
		Host:                  "0.0.0.0",
		AllowedOrigins:        []string{"https://app.example"},
		RatePerMinute:         60,
		MaxConcurrentRequests: 10,
		UsePrometheus:         true,
		ServiceName:           "settler-test",
	}

	serverConfig := buildServerConfig(cfg)
	assert.Equal(t, serverConfig.Address, "0.0.0.0:9090")
	assert.Equal(t, serverConfig.RatePerMinute, 60)
	assert.Equal(t, serverConfig.MaxConcurrentRequests, 10)
	assert.True(t, serverConfig.EnableMetrics)
	assert.Equal(t, serverConfig.OTelConfig.ServiceName, "settler-test")
}
