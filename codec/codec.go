// Package codec converts cache values to and from the opaque bytes a driver
// stores. Schema validation, if any, belongs in a codec.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
