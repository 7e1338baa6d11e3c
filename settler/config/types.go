package config

import (
	"time"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

// RPCSettlerConfig configures the settler RPC server
type RPCSettlerConfig struct {
	// rpc configs
	Port int    `mapstructure:"port" toml:"port"`
	Host string `mapstructure:"host" toml:"host"`

	// CORS configs
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `mapstructure:"rate_per_minute" toml:"rate_per_minute"`
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests" toml:"max_concurrent_requests"`

	// OpenTelemetry configs
	ServiceName    string `mapstructure:"service_name" toml:"service_name"`
	ServiceVersion string `mapstructure:"service_version" toml:"service_version"`
	Environment    string `mapstructure:"environment" toml:"environment"` // PROD, DEV, TEST, LOCAL
	EnableTracing  bool   `mapstructure:"enable_tracing" toml:"enable_tracing"`
	UseOTLPTraces  bool   `mapstructure:"use_otlp_traces" toml:"use_otlp_traces"`
	OTLPTracesURL  string `mapstructure:"otlp_traces_url" toml:"otlp_traces_url"`
	EnableMetrics  bool   `mapstructure:"enable_metrics" toml:"enable_metrics"`
	UsePrometheus  bool   `mapstructure:"use_prometheus" toml:"use_prometheus"`
	UseOTLPMetrics bool   `mapstructure:"use_otlp_metrics" toml:"use_otlp_metrics"`
	OTLPMetricsURL string `mapstructure:"otlp_metrics_url" toml:"otlp_metrics_url"`
	EnableLogs     bool   `mapstructure:"enable_logs" toml:"enable_logs"`
	UseOTLPLogs    bool   `mapstructure:"use_otlp_logs" toml:"use_otlp_logs"`
	OTLPLogsURL    string `mapstructure:"otlp_logs_url" toml:"otlp_logs_url"`

	InsecureOTLP bool `mapstructure:"insecure_otlp" toml:"insecure_otlp"`

	// Development mode uses stdout exporters
	DevelopmentMode bool `mapstructure:"development_mode" toml:"development_mode"`

	// Chain LCD config, the first url is the primary endpoint
	LcdURLs       []string      `mapstructure:"lcd_urls" toml:"lcd_urls"`
	LcdMaxRetries int           `mapstructure:"lcd_max_retries" toml:"lcd_max_retries"`
	LcdRetryDelay time.Duration `mapstructure:"lcd_retry_delay" toml:"lcd_retry_delay"`
	LcdTimeout    time.Duration `mapstructure:"lcd_timeout" toml:"lcd_timeout"`
}

// DeploymentConfig describes one deployed settlement contract and its counterparts
type DeploymentConfig struct {
	ChainID         string `toml:"chain_id" json:"chain_id" yaml:"chain_id"`
	Bech32Prefix    string `toml:"bech32_prefix" json:"bech32_prefix" yaml:"bech32_prefix"`
	NativeDenom     string `toml:"native_denom" json:"native_denom" yaml:"native_denom"`
	MinimumReceive  string `toml:"minimum_receive" json:"minimum_receive" yaml:"minimum_receive"`
	ContractAddress string `toml:"contract_address" json:"contract_address" yaml:"contract_address"`
	Owner           string `toml:"owner" json:"owner" yaml:"owner"`
	LotteryContract string `toml:"lottery_contract" json:"lottery_contract" yaml:"lottery_contract"`
	OraiswapRouter  string `toml:"oraiswap_router" json:"oraiswap_router" yaml:"oraiswap_router"`
}

// MinimumReceiveAmount parses MinimumReceive
func (d DeploymentConfig) MinimumReceiveAmount() (contract.Uint128, error) {
	return contract.ParseUint128(d.MinimumReceive)
}

// InstantiateMsg returns the message that stores this deployment in a contract
func (d DeploymentConfig) InstantiateMsg() contract.InstantiateMsg {
	return contract.InstantiateMsg{
		Owner:           d.Owner,
		LotteryContract: d.LotteryContract,
		OraiswapRouter:  d.OraiswapRouter,
	}
}
