package rmap

import (
	"errors"

	"github.com/ValentinKolb/rmap/wire"
)

// PutAll stores every entry of entries, returning once the server has
// acknowledged all of them (or immediately after send when the client
// is configured with PutReturnsNull — the *_WITHOUT_ACK variant mirrors
// Put's shortcut for the bulk form).
//
// If an entry cannot be encoded for a reason other than the buffer
// running out of space — a Serializer.Write failure mid-loop, after the
// stop-bit entry count has already been written into the shared buffer
// — the connection is torn down rather than resumed, since the server
// would otherwise see a count promising more entries than arrive.
func (c *Client[K, V]) PutAll(entries map[K]V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tag := wire.PUT_ALL
	if c.cfg.PutReturnsNull {
		tag = wire.PUT_ALL_WITHOUT_ACK
	}

	// Snapshot into a stable-order slice: buildRequest may retry writeArgs
	// from scratch after a resize, and Go map iteration order is random
	// on every range — retrying over the map directly could encode a
	// different entry order (or even a different subset, under concurrent
	// mutation of the caller's map) on the second attempt.
	ordered := make([]Entry[K, V], 0, len(entries))
	for k, v := range entries {
		if isNil(k) || isNil(v) {
			return &NullKeyError{Operation: "PutAll"}
		}
		ordered = append(ordered, Entry[K, V]{Key: k, Value: v})
	}

	return c.call("PutAll", tag, func(buf *wire.FramedBuffer) error {
		return c.writePutAllEntries(buf, ordered)
	}, ackOnly)
}

// writePutAllEntries writes the stop-bit entry count followed by each
// key/value pair. Once enough entries have been written to estimate an
// average encoded size, it pre-grows the buffer before it actually runs
// out rather than relying solely on the catch-resize-retry cycle.
func (c *Client[K, V]) writePutAllEntries(buf *wire.FramedBuffer, entries []Entry[K, V]) error {
	if err := wire.WriteStopBit(buf, uint64(len(entries))); err != nil {
		return err
	}

	for i, entry := range entries {
		if i > 0 && buf.Remaining() < c.maxEntrySize {
			estimate := buf.Position() * len(entries) / i
			if estimate > buf.Capacity() {
				buf.Resize(estimate, buf.Position())
			}
		}

		before := buf.Position()
		if err := c.keySer.Write(entry.Key, buf); err != nil {
			return putAllEntryError(err)
		}
		if err := c.valSer.Write(entry.Value, buf); err != nil {
			return putAllEntryError(err)
		}
		if entryLen := buf.Position() - before; entryLen > c.maxEntrySize {
			c.maxEntrySize = entryLen
		}
	}
	return nil
}

// putAllEntryError passes an *wire.OutOfSpaceError through untouched —
// buildRequest's resize-retry loop handles it — and wraps anything else
// as a *TypeMismatchError, marking the call as one that must close the
// connection rather than retry.
func putAllEntryError(err error) error {
	var oos *wire.OutOfSpaceError
	if errors.As(err, &oos) {
		return err
	}
	return &TypeMismatchError{Operation: "PutAll", Detail: err.Error()}
}
