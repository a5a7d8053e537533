// Package transport provides the request/reply wire plumbing between
// the exchange dispatcher and its clients (flow driver, monitor): a
// pluggable Serializer plus a length-prefixed TCP Endpoint/Client pair
// implementing the single-pending-request contract of spec.md §6.
package transport

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Serializer marshals and unmarshals wire messages. Grounded on
// data-ingestor's ISerializer: one seam, swappable implementations.
type Serializer interface {
	Marshal(obj any) ([]byte, error)
	Unmarshal(data []byte, obj any) error
}

// JSONSerializer is the default wire format.
type JSONSerializer struct{}

// NewJSONSerializer creates a Serializer backed by encoding/json.
func NewJSONSerializer() Serializer { return &JSONSerializer{} }

func (j *JSONSerializer) Marshal(obj any) ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}
	return data, nil
}

func (j *JSONSerializer) Unmarshal(data []byte, obj any) error {
	if err := json.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("json unmarshal error: %w", err)
	}
	return nil
}

// GobSerializer is an alternative binary wire format, useful when both
// endpoints are Go processes and JSON's overhead isn't wanted.
type GobSerializer struct{}

// NewGobSerializer creates a Serializer backed by encoding/gob.
func NewGobSerializer() Serializer { return &GobSerializer{} }

func (g *GobSerializer) Marshal(obj any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(obj); err != nil {
		return nil, fmt.Errorf("gob marshal error: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *GobSerializer) Unmarshal(data []byte, obj any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(obj); err != nil {
		return fmt.Errorf("gob unmarshal error: %w", err)
	}
	return nil
}
