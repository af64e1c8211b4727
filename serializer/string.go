package serializer

import "github.com/ValentinKolb/rmap/wire"

// StringSerializer encodes a string as a 4-byte length prefix followed by
// its UTF-8 bytes. It is the default serializer for string keys and
// values: a hand-rolled length-prefixed encoding avoids a reflection-based
// codec on the hot path.
type StringSerializer struct{}

func (StringSerializer) Write(v string, buf *wire.FramedBuffer) error {
	if err := buf.WriteUint32(uint32(len(v))); err != nil {
		return err
	}
	return buf.WriteBytes([]byte(v))
}

func (StringSerializer) Read(buf *wire.FramedBuffer) (string, error) {
	n, err := buf.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := buf.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BytesSerializer passes raw []byte values through with a 4-byte length
// prefix and no further interpretation.
type BytesSerializer struct{}

func (BytesSerializer) Write(v []byte, buf *wire.FramedBuffer) error {
	if err := buf.WriteUint32(uint32(len(v))); err != nil {
		return err
	}
	return buf.WriteBytes(v)
}

func (BytesSerializer) Read(buf *wire.FramedBuffer) ([]byte, error) {
	n, err := buf.ReadUint32()
	if err != nil {
		return nil, err
	}
	return buf.ReadBytes(int(n))
}
