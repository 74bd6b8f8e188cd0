// Package codec defines how values are serialized for warm-tier storage.
//
// The engine keeps hot-tier entries as live values and warm-tier entries as
// encoded bytes: demotion calls Encode, promotion calls Decode. A Decode
// failure is treated by the engine as a corrupt entry and removed.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
