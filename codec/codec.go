package codec

import (
	"bytes"
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// Codec serializes header and claims values to bytes and back.
//
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Standard is the encoding/json codec. Numbers decoded into interface values
// keep their textual form as json.Number.
var Standard Codec = standard{}

// Fast is a json-iterator codec that behaves like encoding/json.
var Fast Codec = fast{api: jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()}

type standard struct{}

func (standard) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (standard) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

type fast struct {
	api jsoniter.API
}

func (f fast) Marshal(v any) ([]byte, error) {
	return f.api.Marshal(v)
}

func (f fast) Unmarshal(data []byte, v any) error {
	return f.api.Unmarshal(data, v)
}
