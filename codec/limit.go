package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is wrapped by LimitCodec when a payload exceeds MaxDecode.
var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec wraps another codec to bound payload sizes. Decode refuses
// inputs above MaxDecode without invoking Inner; Encode refuses outputs above
// MaxEncode so oversized values never reach storage. A limit <= 0 is disabled.
//
// Typical use: a cache file shared with other tools, where a row may hold
// more than the caller is willing to decode.
type LimitCodec[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner Codec[V]
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// payload for Decode. If payload length exceeds MaxDecode, Decode returns
	// an error without invoking Inner.
	MaxDecode int
	MaxEncode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
