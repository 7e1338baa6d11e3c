package contract

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ConfigKey is the storage key of the configuration singleton
var ConfigKey = []byte("config")

// Config is stored once at instantiation and never updated
type Config struct {
	Owner           string `json:"owner"`
	LotteryContract string `json:"lottery_contract"`
	OraiswapRouter  string `json:"oraiswap_router"`
}

// Storage is the key/value store provided by the host
type Storage interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte)
}

// MemoryStorage is an in-memory Storage safe for concurrent use
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[string(key)]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true
}

func (s *MemoryStorage) Set(key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[string(key)] = stored
}

// SaveConfig writes the configuration singleton
func SaveConfig(storage Storage, config Config) error {
	bytes, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	storage.Set(ConfigKey, bytes)
	return nil
}

// LoadConfig reads the configuration singleton
func LoadConfig(storage Storage) (Config, error) {
	bytes, ok := storage.Get(ConfigKey)
	if !ok {
		return Config{}, fmt.Errorf("config not found")
	}
	var config Config
	if err := json.Unmarshal(bytes, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}
