package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/bech32"
)

// Env describes the block and the contract being executed
type Env struct {
	Block    BlockInfo
	Contract ContractInfo
}

type BlockInfo struct {
	Height  uint64
	Time    time.Time
	ChainID string
}

type ContractInfo struct {
	Address string
}

// MessageInfo describes the caller of an execute entrypoint
type MessageInfo struct {
	Sender string
	Funds  []Coin
}

// API validates addresses the way the host chain does
type API interface {
	AddrValidate(address string) (string, error)
}

// Deps bundles the host services handed to every entrypoint
type Deps struct {
	Storage Storage
	Querier Querier
	API     API
}

// Bech32API validates addresses as bech32 strings with a fixed prefix
type Bech32API struct {
	Prefix string
}

// AddrValidate checks the checksum and prefix of address and returns it unchanged
func (a Bech32API) AddrValidate(address string) (string, error) {
	prefix, err := ValidateBech32Address(address)
	if err != nil {
		return "", err
	}
	if a.Prefix != "" && prefix != a.Prefix {
		return "", fmt.Errorf("address %s has prefix %q, expected %q", address, prefix, a.Prefix)
	}
	return address, nil
}

// UncheckedAPI accepts any non-empty address
type UncheckedAPI struct{}

func (UncheckedAPI) AddrValidate(address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", fmt.Errorf("address is empty")
	}
	return address, nil
}

// ValidateBech32Address validates the checksum of a bech32 address and returns its prefix
func ValidateBech32Address(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("address is empty")
	}

	// prefix + "1" + data + checksum
	if len(address) < 10 {
		return "", fmt.Errorf("address too short (minimum 10 characters)")
	}

	sepIdx := strings.LastIndex(address, "1")
	if sepIdx < 1 {
		return "", fmt.Errorf("missing bech32 separator '1'")
	}
	prefix := address[:sepIdx]

	decodedPrefix, data, err := bech32.Decode(address)
	if err != nil {
		return "", fmt.Errorf("invalid bech32 address (checksum failed): %w", err)
	}
	if decodedPrefix != prefix {
		return "", fmt.Errorf("bech32 prefix mismatch")
	}

	// 20 bytes for accounts, 32 for contracts
	if len(data) == 0 {
		return "", fmt.Errorf("empty address data")
	}

	return prefix, nil
}
