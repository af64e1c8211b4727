package rmap

import (
	"net"
	"testing"

	"github.com/ValentinKolb/rmap/config"
	"github.com/ValentinKolb/rmap/serializer"
	"github.com/ValentinKolb/rmap/wire"
)

func TestMapForKeyEncodesKeyAndFunction(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x06, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		if req.tag != wire.MAP_FOR_KEY {
			t.Errorf("server: expected MAP_FOR_KEY tag, got %s", req.tag)
		}

		buf := wire.NewFramedBuffer(len(req.payload))
		_ = buf.WriteBytes(req.payload)
		buf.SetPosition(0)

		keySer := serializer.StringSerializer{}
		if key, err := keySer.Read(buf); err != nil || key != "k" {
			t.Errorf("server: expected key %q, got %q (err=%v)", "k", key, err)
		}

		objSer := serializer.JSONObjectSerializer{}
		fn, err := objSer.ReadObject(buf)
		if err != nil {
			t.Errorf("server: decode function payload: %v", err)
		}
		if fn != "increment" {
			t.Errorf("expected function payload %q, got %v", "increment", fn)
		}

		respBuf := wire.NewFramedBuffer(64)
		if err := objSer.WriteObject(float64(43), respBuf); err != nil {
			t.Errorf("server: encode result: %v", err)
			return
		}
		if err := writeWireResponse(conn, req.txnID, false, respBuf.Bytes()); err != nil {
			t.Errorf("server: write response: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	result, err := c.MapForKey("k", "increment")
	if err != nil {
		t.Fatal(err)
	}
	if result != float64(43) {
		t.Fatalf("want 43, got %v", result)
	}
}

// intPtrSerializer is a throwaway Serializer[*int] used only to
// construct a Client whose key type can actually be nil; NullKeyError
// short-circuits before either method is ever called.
type intPtrSerializer struct{}

func (intPtrSerializer) Write(v *int, buf *wire.FramedBuffer) error { return nil }
func (intPtrSerializer) Read(buf *wire.FramedBuffer) (*int, error)  { return nil, nil }

func TestUpdateForKeyRejectsNilKey(t *testing.T) {
	c := New[*int, string](
		config.ClientConfig{RemoteAddress: "127.0.0.1:1"},
		intPtrSerializer{},
		serializer.StringSerializer{},
		serializer.JSONObjectSerializer{},
	)
	defer c.Close()

	_, err := c.UpdateForKey(nil, "noop")
	if _, ok := err.(*NullKeyError); !ok {
		t.Fatalf("expected *NullKeyError, got %T (%v)", err, err)
	}
}
