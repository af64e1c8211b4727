package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/rmap/wire"
)

// JSONSerializer serializes a value of type T via encoding/json, framed
// with a 4-byte length prefix so it composes with the wire's chunked
// reads.
type JSONSerializer[T any] struct{}

func (JSONSerializer[T]) Write(v T, buf *wire.FramedBuffer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := buf.WriteUint32(uint32(len(b))); err != nil {
		return err
	}
	return buf.WriteBytes(b)
}

func (JSONSerializer[T]) Read(buf *wire.FramedBuffer) (T, error) {
	var zero T
	n, err := buf.ReadUint32()
	if err != nil {
		return zero, err
	}
	b, err := buf.ReadBytes(int(n))
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return zero, err
	}
	return v, nil
}
