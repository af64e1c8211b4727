package rmap

import (
	"encoding/binary"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/rmap/config"
	"github.com/ValentinKolb/rmap/serializer"
	"github.com/ValentinKolb/rmap/wire"
)

// startScriptedServer accepts connections in order and hands each one to
// the next handler in handlers, after completing the one-byte handshake.
// A connection beyond len(handlers) is accepted and closed with no
// further action.
func startScriptedServer(t *testing.T, serverID byte, handlers ...func(conn net.Conn)) (addr string, stop func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	var connIdx atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			idx := int(connIdx.Add(1)) - 1
			go func(c net.Conn, idx int) {
				defer c.Close()
				hs := make([]byte, 1)
				if _, err := io.ReadFull(c, hs); err != nil {
					return
				}
				if _, err := c.Write([]byte{serverID}); err != nil {
					return
				}
				if idx < len(handlers) {
					handlers[idx](c)
				}
			}(conn, idx)
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

type wireRequest struct {
	tag     wire.EventTag
	hasTxn  bool
	txnID   uint64
	payload []byte
}

// readWireRequest parses one request frame off conn the way a real map
// server would: tag, size, optional transaction id, payload.
func readWireRequest(conn net.Conn) (wireRequest, error) {
	var req wireRequest
	head := make([]byte, 5)
	if _, err := io.ReadFull(conn, head); err != nil {
		return req, err
	}
	req.tag = wire.EventTag(head[0])
	size := binary.NativeEndian.Uint32(head[1:5])

	body := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(conn, body); err != nil {
			return req, err
		}
	}

	req.hasTxn = req.tag.ExpectsResponse()
	if req.hasTxn {
		req.txnID = binary.NativeEndian.Uint64(body[:8])
		req.payload = body[8:]
	} else {
		req.payload = body
	}
	return req, nil
}

// writeWireResponse writes one response frame: size, exception flag,
// echoed transaction id, payload.
func writeWireResponse(conn net.Conn, txnID uint64, isException bool, payload []byte) error {
	body := make([]byte, 9+len(payload))
	if isException {
		body[0] = 1
	}
	binary.NativeEndian.PutUint64(body[1:9], txnID)
	copy(body[9:], payload)

	head := make([]byte, 4)
	binary.NativeEndian.PutUint32(head, uint32(len(body)))
	if _, err := conn.Write(head); err != nil {
		return err
	}
	_, err := conn.Write(body)
	return err
}

func newTestClient(t *testing.T, addr string) *Client[string, string] {
	t.Helper()
	cfg := config.ClientConfig{RemoteAddress: addr, Timeout: 2 * time.Second}
	ser := serializer.StringSerializer{}
	return New[string, string](cfg, ser, ser, serializer.JSONObjectSerializer{})
}

func TestSizeRoundTrip(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x07, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		if req.tag != wire.SIZE {
			t.Errorf("server: expected SIZE tag, got %s", req.tag)
		}
		if req.txnID < 1 {
			t.Errorf("server: expected txn id >= 1, got %d", req.txnID)
		}

		payload := wire.NewFramedBuffer(8)
		_ = payload.WriteInt32(42)
		if err := writeWireResponse(conn, req.txnID, false, payload.Bytes()); err != nil {
			t.Errorf("server: write response: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	n, err := c.Size()
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("want 42, got %d", n)
	}
}

func TestPutWithAck(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x01, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		if req.tag != wire.PUT {
			t.Errorf("server: expected PUT tag, got %s", req.tag)
		}

		buf := wire.NewFramedBuffer(len(req.payload))
		_ = buf.WriteBytes(req.payload)
		buf.SetPosition(0)
		ser := serializer.StringSerializer{}
		if key, err := ser.Read(buf); err != nil || key != "a" {
			t.Errorf("server: expected key %q, got %q (err=%v)", "a", key, err)
		}
		if value, err := ser.Read(buf); err != nil || value != "b" {
			t.Errorf("server: expected value %q, got %q (err=%v)", "b", value, err)
		}

		// No prior value: a single "present=false" byte.
		if err := writeWireResponse(conn, req.txnID, false, []byte{0}); err != nil {
			t.Errorf("server: write response: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	prior, ok, err := c.Put("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected ok=false (no prior value), got prior=%q", prior)
	}
}

func TestPutWithoutAck(t *testing.T) {
	reqCh := make(chan wireRequest, 1)
	addr, stop := startScriptedServer(t, 0x01, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		reqCh <- req
		// PUT_WITHOUT_ACK carries no transaction id and expects no response.
	})
	defer stop()

	cfg := config.ClientConfig{RemoteAddress: addr, Timeout: 2 * time.Second, PutReturnsNull: true}
	ser := serializer.StringSerializer{}
	c := New[string, string](cfg, ser, ser, serializer.JSONObjectSerializer{})
	defer c.Close()

	prior, ok, err := c.Put("a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if ok || prior != "" {
		t.Fatalf("expected zero value and ok=false, got prior=%q ok=%v", prior, ok)
	}

	select {
	case req := <-reqCh:
		if req.tag != wire.PUT_WITHOUT_ACK {
			t.Errorf("expected PUT_WITHOUT_ACK tag, got %s", req.tag)
		}
		if req.hasTxn {
			t.Error("expected no txn id slot on a *_WITHOUT_ACK request")
		}
	case <-time.After(time.Second):
		t.Fatal("server never observed the request")
	}
}

func TestReconnectResendsSameTransactionID(t *testing.T) {
	var firstTxn atomic.Uint64
	addr, stop := startScriptedServer(t, 0x02,
		func(conn net.Conn) {
			req, err := readWireRequest(conn)
			if err != nil {
				t.Errorf("server: read first request: %v", err)
				return
			}
			firstTxn.Store(req.txnID)
			// Simulate a mid-response disconnect: close without replying.
		},
		func(conn net.Conn) {
			req, err := readWireRequest(conn)
			if err != nil {
				t.Errorf("server: read retried request: %v", err)
				return
			}
			if want := firstTxn.Load(); req.txnID != want {
				t.Errorf("expected resend to reuse txn id %d, got %d", want, req.txnID)
			}

			payload := wire.NewFramedBuffer(8)
			_ = payload.WriteInt64(7)
			if err := writeWireResponse(conn, req.txnID, false, payload.Bytes()); err != nil {
				t.Errorf("server: write response: %v", err)
			}
		},
	)
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	n, err := c.LongSize()
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Fatalf("want 7, got %d", n)
	}
}

func TestRemoteFailureCarriesSyntheticFrame(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x03, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}

		objSer := serializer.JSONObjectSerializer{}
		buf := wire.NewFramedBuffer(256)
		body := map[string]any{
			"class":   "java.lang.IllegalStateException",
			"message": "missing table",
		}
		if err := objSer.WriteObject(body, buf); err != nil {
			t.Errorf("server: encode failure: %v", err)
			return
		}
		if err := writeWireResponse(conn, req.txnID, true, buf.Bytes()); err != nil {
			t.Errorf("server: write response: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	_, err := c.LongSize()
	failure, ok := err.(*RemoteFailure)
	if !ok {
		t.Fatalf("expected *RemoteFailure, got %T (%v)", err, err)
	}
	if failure.ServerMessage != "missing table" {
		t.Fatalf("want message %q, got %q", "missing table", failure.ServerMessage)
	}
	frame := failure.RemoteFrame()
	if frame.ClassName != "~ remote" {
		t.Fatalf("want synthetic class name %q, got %q", "~ remote", frame.ClassName)
	}
}

func TestValuesChunkedResponse(t *testing.T) {
	addr, stop := startScriptedServer(t, 0x04, func(conn net.Conn) {
		req, err := readWireRequest(conn)
		if err != nil {
			t.Errorf("server: read request: %v", err)
			return
		}
		if req.tag != wire.VALUES {
			t.Errorf("server: expected VALUES tag, got %s", req.tag)
		}
		ser := serializer.StringSerializer{}

		chunk1 := wire.NewFramedBuffer(64)
		_ = chunk1.WriteBool(true)
		_ = chunk1.WriteUint32(3)
		for _, v := range []string{"x", "y", "z"} {
			if err := ser.Write(v, chunk1); err != nil {
				t.Errorf("server: encode chunk1: %v", err)
				return
			}
		}
		if err := writeWireResponse(conn, req.txnID, false, chunk1.Bytes()); err != nil {
			t.Errorf("server: write chunk1: %v", err)
			return
		}

		chunk2 := wire.NewFramedBuffer(64)
		_ = chunk2.WriteBool(false)
		_ = chunk2.WriteUint32(2)
		for _, v := range []string{"p", "q"} {
			if err := ser.Write(v, chunk2); err != nil {
				t.Errorf("server: encode chunk2: %v", err)
				return
			}
		}
		if err := writeWireResponse(conn, req.txnID, false, chunk2.Bytes()); err != nil {
			t.Errorf("server: write chunk2: %v", err)
		}
	})
	defer stop()

	c := newTestClient(t, addr)
	defer c.Close()

	values, err := c.Values()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x", "y", "z", "p", "q"}
	if len(values) != len(want) {
		t.Fatalf("want %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("want %v, got %v", want, values)
		}
	}
}
