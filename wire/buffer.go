// Package wire implements the on-the-wire primitives shared by the remote
// map client's protocol engine: a growable cursor-based byte buffer, the
// stop-bit/event-tag codec, the event tag enumeration, and the transaction
// id generator. None of it depends on a live connection.
package wire

import "encoding/binary"

// minCapacity is the smallest capacity a FramedBuffer is allowed to
// start with.
const minCapacity = 128

// FramedBuffer owns a single contiguous native-endian byte buffer with
// classic (capacity, position, limit) cursor semantics. 0 <= position <=
// limit <= capacity always holds. Resize never shrinks and always
// preserves bytes [0, position) of the pre-resize buffer.
type FramedBuffer struct {
	buf      []byte
	position int
	limit    int
}

// NewFramedBuffer allocates a buffer with at least minCapacity bytes.
func NewFramedBuffer(capacity int) *FramedBuffer {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	b := &FramedBuffer{buf: make([]byte, capacity)}
	b.Clear()
	return b
}

// Clear resets position to 0 and limit to capacity. Contents are not wiped.
func (b *FramedBuffer) Clear() {
	b.position = 0
	b.limit = len(b.buf)
}

func (b *FramedBuffer) Capacity() int { return len(b.buf) }
func (b *FramedBuffer) Position() int { return b.position }
func (b *FramedBuffer) Limit() int    { return b.limit }
func (b *FramedBuffer) Remaining() int {
	return b.limit - b.position
}

// SetPosition moves the cursor without validating against prior writes.
// Callers use this to rewind to an anchor before retrying an encoding
// attempt after a Resize.
func (b *FramedBuffer) SetPosition(p int) { b.position = p }

// MarkPosition returns the current position, to be passed back to
// SetPosition or Resize's anchor parameter later.
func (b *FramedBuffer) MarkPosition() int { return b.position }

// Skip advances position by n bytes without writing, reserving the space
// for a later patch via WriteUint32At/WriteUint64At.
func (b *FramedBuffer) Skip(n int) error {
	if b.position+n > b.limit {
		return &OutOfSpaceError{Required: b.position + n - b.limit}
	}
	b.position += n
	return nil
}

// Bytes returns the written region [0, position).
func (b *FramedBuffer) Bytes() []byte {
	return b.buf[:b.position]
}

// Unread returns the unread region [position, limit).
func (b *FramedBuffer) Unread() []byte {
	return b.buf[b.position:b.limit]
}

// Resize allocates a new buffer of at least newCapacity bytes, copies
// [0, position) from the old buffer, swaps it in, and restores position
// to anchor. Resize never shrinks the buffer below its current capacity.
func (b *FramedBuffer) Resize(newCapacity, anchor int) {
	if newCapacity <= len(b.buf) {
		newCapacity = len(b.buf)*2 + 1
	}
	fresh := make([]byte, newCapacity)
	copy(fresh, b.buf[:b.position])
	b.buf = fresh
	b.limit = len(b.buf)
	b.position = anchor
}

// Compact shifts the unread region [position, limit) to offset 0 and
// updates position/limit accordingly. If the unread region is empty, it
// fully clears the buffer instead. The chunked-response reader calls it
// between chunks; the following readFrame clears the buffer and writes
// the next frame from offset 0, so nothing Compact keeps survives that
// read.
func (b *FramedBuffer) Compact() {
	unread := b.limit - b.position
	if unread <= 0 {
		b.Clear()
		return
	}
	copy(b.buf, b.buf[b.position:b.limit])
	b.position = 0
	b.limit = unread
}

func (b *FramedBuffer) ensureWritable(n int) error {
	if b.position+n > b.limit {
		return &OutOfSpaceError{Required: b.position + n - b.limit}
	}
	return nil
}

func (b *FramedBuffer) ensureReadable(n int) error {
	if b.position+n > b.limit {
		return &TruncatedError{Requested: n, Available: b.limit - b.position}
	}
	return nil
}

// --------------------------------------------------------------------------
// Primitive writes (advance position)
// --------------------------------------------------------------------------

func (b *FramedBuffer) WriteUint8(v uint8) error {
	if err := b.ensureWritable(1); err != nil {
		return err
	}
	b.buf[b.position] = v
	b.position++
	return nil
}

func (b *FramedBuffer) WriteBool(v bool) error {
	if v {
		return b.WriteUint8(1)
	}
	return b.WriteUint8(0)
}

func (b *FramedBuffer) WriteUint32(v uint32) error {
	if err := b.ensureWritable(4); err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(b.buf[b.position:], v)
	b.position += 4
	return nil
}

func (b *FramedBuffer) WriteInt32(v int32) error {
	return b.WriteUint32(uint32(v))
}

func (b *FramedBuffer) WriteUint64(v uint64) error {
	if err := b.ensureWritable(8); err != nil {
		return err
	}
	binary.NativeEndian.PutUint64(b.buf[b.position:], v)
	b.position += 8
	return nil
}

func (b *FramedBuffer) WriteInt64(v int64) error {
	return b.WriteUint64(uint64(v))
}

func (b *FramedBuffer) WriteBytes(v []byte) error {
	if err := b.ensureWritable(len(v)); err != nil {
		return err
	}
	copy(b.buf[b.position:], v)
	b.position += len(v)
	return nil
}

// --------------------------------------------------------------------------
// Patch writes (do not move position)
// --------------------------------------------------------------------------

func (b *FramedBuffer) WriteUint32At(offset int, v uint32) {
	binary.NativeEndian.PutUint32(b.buf[offset:], v)
}

func (b *FramedBuffer) WriteUint64At(offset int, v uint64) {
	binary.NativeEndian.PutUint64(b.buf[offset:], v)
}

// --------------------------------------------------------------------------
// Primitive reads (advance position)
// --------------------------------------------------------------------------

func (b *FramedBuffer) ReadUint8() (uint8, error) {
	if err := b.ensureReadable(1); err != nil {
		return 0, err
	}
	v := b.buf[b.position]
	b.position++
	return v, nil
}

func (b *FramedBuffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

func (b *FramedBuffer) ReadUint32() (uint32, error) {
	if err := b.ensureReadable(4); err != nil {
		return 0, err
	}
	v := binary.NativeEndian.Uint32(b.buf[b.position:])
	b.position += 4
	return v, nil
}

func (b *FramedBuffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *FramedBuffer) ReadUint64() (uint64, error) {
	if err := b.ensureReadable(8); err != nil {
		return 0, err
	}
	v := binary.NativeEndian.Uint64(b.buf[b.position:])
	b.position += 8
	return v, nil
}

func (b *FramedBuffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *FramedBuffer) ReadBytes(n int) ([]byte, error) {
	if err := b.ensureReadable(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, b.buf[b.position:b.position+n])
	b.position += n
	return v, nil
}
