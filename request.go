package rmap

import (
	"errors"
	"time"

	"github.com/ValentinKolb/rmap/wire"
)

// preparedRequest is what buildRequest hands to the Exchange: the
// encoded bytes ready to send, whether a response frame follows, and
// (if so) the transaction id the response must echo.
type preparedRequest struct {
	bytes       []byte
	expectsResp bool
	txnID       uint64
}

// buildRequest clears the shared buffer, writes the event tag, reserves
// the size (and, if a response is expected, transaction-id) slots,
// invokes writeArgs to encode the per-operation payload, and patches
// the reserved slots once the argument encoding succeeds.
//
// writeArgs may return a *wire.OutOfSpaceError; buildRequest resizes the
// shared buffer and retries writeArgs in full, from the same anchor
// (the position immediately after the reserved slots), since the
// Serializer contract guarantees writes are side-effect free other
// than advancing the buffer's own cursor.
func (c *Client[K, V]) buildRequest(tag wire.EventTag, writeArgs func(buf *wire.FramedBuffer) error) (preparedRequest, error) {
	c.buf.Clear()

	if err := wire.WriteEventTag(c.buf, tag); err != nil {
		return preparedRequest{}, err
	}

	sizeSlot := c.buf.Position()
	if err := c.buf.Skip(4); err != nil {
		return preparedRequest{}, err
	}

	hasTxn := tag.ExpectsResponse()
	var txnSlot int
	if hasTxn {
		txnSlot = c.buf.Position()
		if err := c.buf.Skip(8); err != nil {
			return preparedRequest{}, err
		}
	}

	anchor := c.buf.Position()

	for {
		c.buf.SetPosition(anchor)
		err := writeArgs(c.buf)
		if err == nil {
			break
		}

		var oos *wire.OutOfSpaceError
		if !errors.As(err, &oos) {
			return preparedRequest{}, err
		}

		required := oos.Required
		if required <= 0 {
			required = c.maxEntrySize
		}
		if required > c.maxEntrySize {
			c.maxEntrySize = required
		}
		c.buf.Resize(c.buf.Capacity()+max(c.maxEntrySize, required), anchor)
	}

	var txnID uint64
	if hasTxn {
		txnID = c.clock.Next(uint64(time.Now().UnixMilli()))
		c.buf.WriteUint64At(txnSlot, txnID)
	}

	size := uint32(c.buf.Position() - sizeSlot - 4)
	c.buf.WriteUint32At(sizeSlot, size)

	return preparedRequest{
		bytes:       append([]byte(nil), c.buf.Bytes()...),
		expectsResp: hasTxn,
		txnID:       txnID,
	}, nil
}
