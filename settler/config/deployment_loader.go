package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
)

const DefaultBech32Prefix = "orai"

// FileReader defines the interface for reading files
type FileReader interface {
	// ReadFile reads the file at the given path and returns the contents
	ReadFile(path string) ([]byte, error)
}

// DefaultFileReader implements FileReader using os.ReadFile
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DeploymentLoader wraps a FileReader to load deployment files
type DeploymentLoader struct {
	fileReader FileReader
}

// NewDeploymentLoader creates a DeploymentLoader with the given FileReader
func NewDeploymentLoader(fileReader FileReader) *DeploymentLoader {
	return &DeploymentLoader{fileReader: fileReader}
}

// NewDefaultDeploymentLoader creates a DeploymentLoader reading from disk
func NewDefaultDeploymentLoader() *DeploymentLoader {
	return NewDeploymentLoader(&DefaultFileReader{})
}

// LoadFromFile loads a deployment from a TOML, JSON or YAML file, picked by extension.
// Missing optional fields get their defaults and every address is validated.
func (l *DeploymentLoader) LoadFromFile(filePath string) (*DeploymentConfig, error) {
	data, err := l.fileReader.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment file: %w", err)
	}

	var deployment DeploymentConfig
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".toml":
		if err := toml.Unmarshal(data, &deployment); err != nil {
			return nil, fmt.Errorf("failed to parse TOML deployment: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &deployment); err != nil {
			return nil, fmt.Errorf("failed to parse JSON deployment: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &deployment); err != nil {
			return nil, fmt.Errorf("failed to parse YAML deployment: %w", err)
		}
	default:
		return nil, fmt.Errorf("deployment file must be toml, json or yaml: %s", filePath)
	}

	deployment.ApplyDefaults()
	if err := deployment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment %s: %w", filePath, err)
	}
	return &deployment, nil
}

// ApplyDefaults fills the optional fields
func (d *DeploymentConfig) ApplyDefaults() {
	if d.Bech32Prefix == "" {
		d.Bech32Prefix = DefaultBech32Prefix
	}
	if d.NativeDenom == "" {
		d.NativeDenom = contract.DefaultNativeDenom
	}
	if d.MinimumReceive == "" {
		d.MinimumReceive = strconv.FormatUint(contract.DefaultMinimumReceive, 10)
	}
}

// Validate checks the addresses against the bech32 prefix and parses the amounts
func (d *DeploymentConfig) Validate() error {
	if strings.TrimSpace(d.NativeDenom) == "" {
		return fmt.Errorf("native_denom is required")
	}
	if _, err := d.MinimumReceiveAmount(); err != nil {
		return fmt.Errorf("minimum_receive: %w", err)
	}

	api := contract.Bech32API{Prefix: d.Bech32Prefix}
	addresses := []struct {
		field string
		value string
	}{
		{"contract_address", d.ContractAddress},
		{"owner", d.Owner},
		{"lottery_contract", d.LotteryContract},
		{"oraiswap_router", d.OraiswapRouter},
	}
	for _, addr := range addresses {
		if _, err := api.AddrValidate(addr.value); err != nil {
			return fmt.Errorf("%s: %w", addr.field, err)
		}
	}
	return nil
}
