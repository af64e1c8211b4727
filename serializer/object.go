package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/rmap/wire"
)

// JSONObjectSerializer implements ObjectSerializer via encoding/json
// against an untyped any, used for MAP_FOR_KEY/UPDATE_FOR_KEY function
// payloads and for decoding a remote exception body. Decoded objects
// come back as the json package's default dynamic shapes
// (map[string]any, []any, and so on) since the wire does not carry a
// concrete Go type for either.
type JSONObjectSerializer struct{}

func (JSONObjectSerializer) WriteObject(obj any, buf *wire.FramedBuffer) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err := buf.WriteUint32(uint32(len(b))); err != nil {
		return err
	}
	return buf.WriteBytes(b)
}

func (JSONObjectSerializer) ReadObject(buf *wire.FramedBuffer) (any, error) {
	n, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	b, err := buf.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
