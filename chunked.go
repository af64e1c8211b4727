package rmap

import (
	"time"

	"github.com/ValentinKolb/rmap/wire"
)

// readChunked walks a streamed chunked response. The first frame must
// already have been read into the shared buffer by readFrame; it walks
// that frame and any follow-up frames sharing txnID, decoding each
// chunk's entries with decodeEntry until a chunk reports
// hasMoreEntries = false.
//
// Go methods cannot carry their own type parameters beyond the
// receiver's, so this is a free function parameterized separately over
// the entry type T rather than a method on Client[K, V].
func readChunked[K comparable, V, T any](c *Client[K, V], op string, txnID uint64, deadline time.Time, decodeEntry func(buf *wire.FramedBuffer) (T, error)) ([]T, error) {
	var out []T
	for {
		hasMore, err := c.buf.ReadBool()
		if err != nil {
			return nil, err
		}
		count, err := c.buf.ReadUint32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			entry, err := decodeEntry(c.buf)
			if err != nil {
				return nil, err
			}
			out = append(out, entry)
		}
		if !hasMore {
			return out, nil
		}

		c.buf.Compact()
		recvLen, err := c.readFrame(txnID, deadline)
		if err != nil {
			return nil, err
		}
		c.metrics.recordResponse(recvLen)
	}
}
