package lcdquery

import (
	"encoding/json"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

// BalanceResponse is the answer of /cosmos/bank/v1beta1/balances/{address}/by_denom
type BalanceResponse struct {
	Balance contract.Coin `json:"balance"`
}

// SmartQueryResponse is the answer of /cosmwasm/wasm/v1/contract/{address}/smart/{query}
type SmartQueryResponse struct {
	Data json.RawMessage `json:"data"`
}

// ErrorResponse is returned by the LCD with non 200 statuses
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NodeInfoResponse is a partial answer of /cosmos/base/tendermint/v1beta1/node_info
type NodeInfoResponse struct {
	DefaultNodeInfo struct {
		Network string `json:"network"`
		Version string `json:"version"`
		Moniker string `json:"moniker"`
	} `json:"default_node_info"`
	ApplicationVersion struct {
		AppName          string `json:"app_name"`
		Version          string `json:"version"`
		CosmosSdkVersion string `json:"cosmos_sdk_version"`
	} `json:"application_version"`
}

// NodeStatus is the part of the node info the service exposes
type NodeStatus struct {
	BaseURL    string `json:"base_url"`
	Network    string `json:"network"`
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
}
