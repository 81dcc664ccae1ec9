package vidq

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Encoder defines the interface for task record serialization.
type Encoder interface {
	// Encode serializes a value to bytes.
	Encode(any) ([]byte, error)
	// Decode deserializes bytes to a value.
	Decode([]byte, any) error
}

// JSONEncoder is the default implementation of Encoder.
// It uses the standard library for encoding and sonic for decoding, which is
// the hot path: every Get/List decodes full task records.
type JSONEncoder struct{}

// Encode serializes a value to JSON using the standard library.
func (*JSONEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode deserializes JSON bytes using sonic.
func (*JSONEncoder) Decode(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
