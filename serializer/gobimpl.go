package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/rmap/wire"
)

// GobSerializer serializes a value of type T via encoding/gob, framed
// with a 4-byte length prefix, the same way as JSONSerializer.
type GobSerializer[T any] struct{}

func (GobSerializer[T]) Write(v T, buf *wire.FramedBuffer) error {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(v); err != nil {
		return err
	}
	if err := buf.WriteUint32(uint32(b.Len())); err != nil {
		return err
	}
	return buf.WriteBytes(b.Bytes())
}

func (GobSerializer[T]) Read(buf *wire.FramedBuffer) (T, error) {
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
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return zero, err
	}
	return v, nil
}
