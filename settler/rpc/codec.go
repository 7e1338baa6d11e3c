package rpc

import (
	"encoding/json"
)

// jsonCodec replaces the protojson codec so plain Go structs travel over the
// Connect protocol as application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	// empty bodies are valid for requests without fields
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
