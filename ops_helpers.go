package rmap

import "github.com/ValentinKolb/rmap/wire"

// call runs one round trip for a non-chunked operation: build the
// request, exchange it, and (if a response was expected) decode the
// payload left positioned in the shared buffer. Callers hold c.mu for
// the duration; call itself does not lock.
func (c *Client[K, V]) call(op string, tag wire.EventTag, writeArgs func(*wire.FramedBuffer) error, decode func(*wire.FramedBuffer) error) error {
	if c.closed {
		return &ClosedChannelError{}
	}
	deadline := c.deadline()

	req, err := c.buildRequest(tag, writeArgs)
	if err != nil {
		if _, isTypeMismatch := err.(*TypeMismatchError); isTypeMismatch {
			// The stop-bit entry count (PutAll) may already describe a
			// payload that will never be completed; close the connection
			// rather than risk a desynchronized server on some future
			// reuse of this buffer.
			c.disconnect()
		}
		return err
	}

	if err := c.exchange(op, req, deadline); err != nil {
		return err
	}

	if !req.expectsResp {
		return nil
	}
	return decode(c.buf)
}

// callChunked runs the round trip for a collection query: exchange
// reads the first frame into the shared buffer, then readChunked walks
// it and any follow-up frames, writing the decoded entries into out.
func callChunked[K comparable, V, T any](c *Client[K, V], op string, tag wire.EventTag, writeArgs func(*wire.FramedBuffer) error, decodeEntry func(buf *wire.FramedBuffer) (T, error), out *[]T) error {
	if c.closed {
		return &ClosedChannelError{}
	}
	deadline := c.deadline()

	req, err := c.buildRequest(tag, writeArgs)
	if err != nil {
		return err
	}

	if err := c.exchange(op, req, deadline); err != nil {
		return err
	}

	entries, err := readChunked(c, op, req.txnID, deadline, decodeEntry)
	if err != nil {
		return err
	}
	*out = entries
	return nil
}
