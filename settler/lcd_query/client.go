package lcdquery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "lcd").Logger()
}

// SetLogger replaces the package logger
func SetLogger(logger zerolog.Logger) {
	log = logger.With().Str("component", "lcd").Logger()
}

const nodeInfoPath = "/cosmos/base/tendermint/v1beta1/node_info"

// LcdQueryClient reads chain state from a Cosmos LCD (REST) endpoint with failover support.
// It maintains a primary endpoint and can automatically switch to backup endpoints
// when the primary is unavailable.
//
// LcdQueryClient implements contract.Querier.
type LcdQueryClient struct {
	httpClient     *http.Client
	primaryURL     string
	backupURLs     []string
	currentURL     string
	mu             sync.RWMutex
	healthChecker  *healthChecker
	failoverConfig FailoverConfig
}

var _ contract.Querier = (*LcdQueryClient)(nil)

// FailoverConfig controls failover behavior
type FailoverConfig struct {
	// MaxRetries is the number of times to retry a failed request on the current endpoint
	MaxRetries int
	// RetryDelay is the initial delay between retries (doubles with each retry)
	RetryDelay time.Duration
	// HealthCheckInterval is how often to check if the primary endpoint is back up
	HealthCheckInterval time.Duration
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// DefaultFailoverConfig returns the defaults used by the service
func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{
		MaxRetries:          2,
		RetryDelay:          500 * time.Millisecond,
		HealthCheckInterval: 30 * time.Second,
		Timeout:             10 * time.Second,
	}
}

// healthChecker periodically checks if the primary endpoint is healthy
type healthChecker struct {
	client    *LcdQueryClient
	stopCh    chan struct{}
	stoppedCh chan struct{}
	isRunning bool
	mu        sync.Mutex
}

// NewLcdQueryClient creates a client with a single endpoint
func NewLcdQueryClient(apiURL string) (*LcdQueryClient, error) {
	return NewLcdQueryClientWithFailover(apiURL, nil, DefaultFailoverConfig())
}

// NewLcdQueryClientWithFailover creates a client that fails over to backupURLs.
// Invalid backup URLs are skipped, an invalid primary URL is an error.
func NewLcdQueryClientWithFailover(
	primaryURL string,
	backupURLs []string,
	config FailoverConfig,
) (*LcdQueryClient, error) {
	if err := validateURL(primaryURL); err != nil {
		return nil, fmt.Errorf("invalid primary LCD url: %w", err)
	}

	validBackups := make([]string, 0, len(backupURLs))
	for _, u := range backupURLs {
		if err := validateURL(u); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("Invalid backup URL, skipping")
			continue
		}
		validBackups = append(validBackups, u)
	}

	client := &LcdQueryClient{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		primaryURL:     primaryURL,
		backupURLs:     validBackups,
		currentURL:     primaryURL,
		failoverConfig: config,
	}

	if len(validBackups) > 0 && config.HealthCheckInterval > 0 {
		client.startHealthChecker()
	}

	log.Info().
		Str("primary", primaryURL).
		Int("backups", len(validBackups)).
		Msg("LCD client initialized")
	return client, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func (c *LcdQueryClient) startHealthChecker() {
	c.healthChecker = &healthChecker{
		client:    c,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	c.healthChecker.start()
}

func (h *healthChecker) start() {
	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		return
	}
	h.isRunning = true
	h.mu.Unlock()

	go func() {
		defer close(h.stoppedCh)
		ticker := time.NewTicker(h.client.failoverConfig.HealthCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				h.checkAndRestore()
			}
		}
	}()
}

func (h *healthChecker) stop() {
	h.mu.Lock()
	if !h.isRunning {
		h.mu.Unlock()
		return
	}
	h.isRunning = false
	h.mu.Unlock()

	close(h.stopCh)
	<-h.stoppedCh
}

// checkAndRestore switches back to the primary endpoint once it answers again
func (h *healthChecker) checkAndRestore() {
	h.client.mu.RLock()
	currentURL := h.client.currentURL
	primaryURL := h.client.primaryURL
	h.client.mu.RUnlock()

	if currentURL == primaryURL {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.client.failoverConfig.Timeout)
	defer cancel()
	if h.client.isEndpointHealthy(ctx, primaryURL) {
		h.client.mu.Lock()
		h.client.currentURL = primaryURL
		h.client.mu.Unlock()
		log.Info().Str("url", primaryURL).Msg("Restored primary endpoint")
	}
}

// isEndpointHealthy probes the node info endpoint
func (c *LcdQueryClient) isEndpointHealthy(ctx context.Context, endpoint string) bool {
	healthURL := endpoint + nodeInfoPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", healthURL).Msg("Health check failed")
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	log.Debug().Str("url", healthURL).Int("status", resp.StatusCode).Msg("Health check response")
	return resp.StatusCode == http.StatusOK
}

// CurrentURL returns the active endpoint
func (c *LcdQueryClient) CurrentURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentURL
}

// failover switches to the next healthy endpoint, primary included
func (c *LcdQueryClient) failover(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	allURLs := append([]string{c.primaryURL}, c.backupURLs...)
	currentIdx := -1
	for i, u := range allURLs {
		if u == c.currentURL {
			currentIdx = i
			break
		}
	}

	for i := 1; i <= len(allURLs); i++ {
		nextURL := allURLs[(currentIdx+i)%len(allURLs)]
		if nextURL == c.currentURL {
			continue
		}
		if c.isEndpointHealthy(ctx, nextURL) {
			c.currentURL = nextURL
			log.Info().Str("url", nextURL).Msg("Failover to endpoint")
			return true
		}
	}

	log.Warn().Str("url", c.currentURL).Msg("All endpoints unhealthy, staying on current")
	return false
}

// Close stops the health checker
func (c *LcdQueryClient) Close() {
	if c.healthChecker != nil {
		c.healthChecker.stop()
	}
}

// get performs a single GET against endpoint+path and returns the body of a 200 answer
func (c *LcdQueryClient) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var lcdErr ErrorResponse
		if json.Unmarshal(body, &lcdErr) == nil && lcdErr.Message != "" {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, lcdErr.Message)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// doRequestWithFailover performs a GET with retries on the current endpoint, then one
// attempt on the next healthy endpoint. Cancelling ctx stops the retries.
func (c *LcdQueryClient) doRequestWithFailover(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	retryDelay := c.failoverConfig.RetryDelay

	for attempt := 0; attempt <= c.failoverConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("request cancelled: %w (last error: %w)", ctx.Err(), lastErr)
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}

		body, err := c.get(ctx, c.CurrentURL(), path)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", lastErr)
		}
	}

	if len(c.backupURLs) > 0 && c.failover(ctx) {
		body, err := c.get(ctx, c.CurrentURL(), path)
		if err != nil {
			return nil, fmt.Errorf("failover request failed: %w (original: %w)", err, lastErr)
		}
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.failoverConfig.MaxRetries+1, lastErr)
}

// QueryBalance returns the bank balance of address in denom
func (c *LcdQueryClient) QueryBalance(ctx context.Context, address, denom string) (contract.Coin, error) {
	path := fmt.Sprintf(
		"/cosmos/bank/v1beta1/balances/%s/by_denom?denom=%s",
		url.PathEscape(address), url.QueryEscape(denom),
	)

	body, err := c.doRequestWithFailover(ctx, path)
	if err != nil {
		return contract.Coin{}, err
	}

	var balance BalanceResponse
	if err := json.Unmarshal(body, &balance); err != nil {
		return contract.Coin{}, fmt.Errorf("failed to parse balance response: %w", err)
	}
	// the LCD leaves the denom empty for accounts that never held it
	if balance.Balance.Denom == "" {
		balance.Balance.Denom = denom
	}
	return balance.Balance, nil
}

// QueryWasmSmart sends msg to the query entrypoint of contractAddr and decodes the answer into out
func (c *LcdQueryClient) QueryWasmSmart(ctx context.Context, contractAddr string, msg any, out any) error {
	query, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize smart query: %w", err)
	}
	path := fmt.Sprintf(
		"/cosmwasm/wasm/v1/contract/%s/smart/%s",
		url.PathEscape(contractAddr), base64.URLEncoding.EncodeToString(query),
	)

	body, err := c.doRequestWithFailover(ctx, path)
	if err != nil {
		return err
	}

	var resp SmartQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse smart query response: %w", err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("smart query to %s returned no data", contractAddr)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode smart query data: %w", err)
	}
	return nil
}

// NodeInfo returns the status of the active endpoint
func (c *LcdQueryClient) NodeInfo(ctx context.Context) (NodeStatus, error) {
	body, err := c.doRequestWithFailover(ctx, nodeInfoPath)
	if err != nil {
		return NodeStatus{}, err
	}

	var info NodeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return NodeStatus{}, fmt.Errorf("failed to parse node info: %w", err)
	}
	return NodeStatus{
		BaseURL:    c.CurrentURL(),
		Network:    info.DefaultNodeInfo.Network,
		AppName:    info.ApplicationVersion.AppName,
		AppVersion: info.ApplicationVersion.Version,
	}, nil
}
