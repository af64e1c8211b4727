// Package serializer provides the Serializer[T] collaborator the protocol
// engine delegates key/value encoding to, plus concrete implementations:
// hand-rolled binary encoders for strings and raw bytes, and generic
// encoding/json and encoding/gob based encoders for arbitrary K or V
// types.
package serializer

import "github.com/ValentinKolb/rmap/wire"

// Serializer writes and reads values of type T against a FramedBuffer.
// Write must return a *wire.OutOfSpaceError (ideally with Required set)
// when the buffer has insufficient remaining space; RequestBuilder
// catches that error, grows the buffer, and retries the write at the
// same anchor. Read must return a *wire.TruncatedError on a short read.
type Serializer[T any] interface {
	// Write encodes v into buf, advancing its position.
	Write(v T, buf *wire.FramedBuffer) error
	// Read decodes a value of T from buf, advancing its position.
	Read(buf *wire.FramedBuffer) (T, error)
}

// ObjectSerializer is a secondary collaborator used only for the
// MAP_FOR_KEY / UPDATE_FOR_KEY function payloads and for decoding a
// remote exception body. It is intentionally untyped (obj is an
// interface{}) because the wire payload shape for a remote function or
// exception is server-defined, not part of the K/V domain type.
type ObjectSerializer interface {
	WriteObject(obj any, buf *wire.FramedBuffer) error
	ReadObject(buf *wire.FramedBuffer) (any, error)
}
