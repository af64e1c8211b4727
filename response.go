package rmap

import (
	"encoding/binary"
	"time"
)

// readFrame reads a length-prefixed frame from the connection into the
// shared buffer, validates the echoed transaction id, and detects the
// exception flag. On success the shared buffer's position sits at the
// start of the frame's payload, ready for the caller to decode via the
// key/value Serializers.
func (c *Client[K, V]) readFrame(expectedTxn uint64, deadline time.Time) (int, error) {
	sizeBytes, err := c.conn.RecvExact(4, deadline)
	if err != nil {
		return 0, err
	}
	size := binary.NativeEndian.Uint32(sizeBytes)

	payload, err := c.conn.RecvExact(int(size), deadline)
	if err != nil {
		return 0, err
	}
	recvLen := len(sizeBytes) + len(payload)

	if c.buf.Capacity() < int(size) {
		c.buf.Resize(int(size), 0)
	}
	c.buf.Clear()
	if err := c.buf.WriteBytes(payload); err != nil {
		return recvLen, err
	}
	c.buf.SetPosition(0)

	isException, err := c.buf.ReadUint8()
	if err != nil {
		return recvLen, err
	}
	echoedTxn, err := c.buf.ReadUint64()
	if err != nil {
		return recvLen, err
	}
	if echoedTxn != expectedTxn {
		return recvLen, &ProtocolViolationError{Expected: expectedTxn, Got: echoedTxn}
	}

	if isException == 1 {
		return recvLen, c.decodeRemoteFailure()
	}
	return recvLen, nil
}

// decodeRemoteFailure reads a remote exception body through the
// ObjectSerializer and reconstructs a first-class RemoteFailure rather
// than splicing a synthetic frame into a local exception via
// reflection.
func (c *Client[K, V]) decodeRemoteFailure() error {
	obj, err := c.objSer.ReadObject(c.buf)
	if err != nil {
		return err
	}

	failure := &RemoteFailure{
		RemoteHost: c.remoteHost(),
		RemotePort: c.remotePort(),
	}

	m, ok := obj.(map[string]any)
	if !ok {
		failure.ServerClassName = "UnknownRemoteException"
		failure.ServerMessage = "malformed remote exception payload"
		return failure
	}

	if v, ok := m["class"].(string); ok {
		failure.ServerClassName = v
	} else {
		failure.ServerClassName = "RemoteException"
	}
	if v, ok := m["message"].(string); ok {
		failure.ServerMessage = v
	}
	if frames, ok := m["stack"].([]any); ok {
		for _, f := range frames {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			frame := StackFrame{}
			if v, ok := fm["class"].(string); ok {
				frame.ClassName = v
			}
			if v, ok := fm["method"].(string); ok {
				frame.MethodName = v
			}
			if v, ok := fm["file"].(string); ok {
				frame.FileName = v
			}
			if v, ok := fm["line"].(float64); ok {
				frame.LineNumber = int(v)
			}
			failure.ServerStack = append(failure.ServerStack, frame)
		}
	}

	return failure
}
