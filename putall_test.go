package rmap

import (
	"net"
	"testing"

	"github.com/ValentinKolb/rmap/config"
	"github.com/ValentinKolb/rmap/serializer"
	"github.com/ValentinKolb/rmap/wire"
)

func TestPutAllRoundTrip(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x05, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		if req.tag != wire.PUT_ALL {
			t.Errorf("server: expected PUT_ALL tag, got %s", req.tag)
		}

		buf := wire.NewFramedBuffer(len(req.payload))
		_ = buf.WriteBytes(req.payload)
		buf.SetPosition(0)

		count, err := wire.ReadStopBit(buf)
		if err != nil {
			t.Errorf("server: read stop bit: %v", err)
			return
		}
		ser := serializer.StringSerializer{}
		got := make(map[string]string, count)
		for i := uint64(0); i < count; i++ {
			k, err := ser.Read(buf)
			if err != nil {
				t.Errorf("server: read key: %v", err)
				return
			}
			v, err := ser.Read(buf)
			if err != nil {
				t.Errorf("server: read value: %v", err)
				return
			}
			got[k] = v
		}
		want := map[string]string{"a": "1", "b": "2"}
		if len(got) != len(want) {
			t.Errorf("want %v entries, got %v", want, got)
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("want %s=%s, got %s=%s", k, v, k, got[k])
			}
		}

		if err := writeWireResponse(conn, req.txnID, false, nil); err != nil {
			t.Errorf("server: write response: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	if err := c.PutAll(map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatal(err)
	}
}

func TestPutAllRejectsNilValue(t *testing.T) {
	c := New[string, []byte](
		config.ClientConfig{RemoteAddress: "127.0.0.1:1"},
		serializer.StringSerializer{},
		serializer.BytesSerializer{},
		serializer.JSONObjectSerializer{},
	)
	defer c.Close()

	err := c.PutAll(map[string][]byte{"a": nil})
	if _, ok := err.(*NullKeyError); !ok {
		t.Fatalf("expected *NullKeyError, got %T (%v)", err, err)
	}
}
