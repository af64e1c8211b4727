package rmap

import (
	"reflect"

	"github.com/ValentinKolb/rmap/wire"
)

// Entry is a single key/value pair as returned by EntrySet.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Heartbeat performs a zero-argument round trip, the keep-alive
// operation ChronicleMap's wire protocol reserves a tag for. Useful for
// validating connectivity without touching the map.
func (c *Client[K, V]) Heartbeat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call("Heartbeat", wire.HEARTBEAT, noArgs, func(*wire.FramedBuffer) error { return nil })
}

// Size returns the map's entry count as a 32-bit value.
func (c *Client[K, V]) Size() (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result int32
	err := c.call("Size", wire.SIZE, noArgs, func(buf *wire.FramedBuffer) error {
		v, err := buf.ReadInt32()
		result = v
		return err
	})
	return result, err
}

// LongSize returns the map's entry count as a 64-bit value.
func (c *Client[K, V]) LongSize() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result int64
	err := c.call("LongSize", wire.LONG_SIZE, noArgs, func(buf *wire.FramedBuffer) error {
		v, err := buf.ReadInt64()
		result = v
		return err
	})
	return result, err
}

// IsEmpty reports whether the map has no entries.
func (c *Client[K, V]) IsEmpty() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result bool
	err := c.call("IsEmpty", wire.IS_EMPTY, noArgs, func(buf *wire.FramedBuffer) error {
		v, err := buf.ReadBool()
		result = v
		return err
	})
	return result, err
}

// Clear removes all entries.
func (c *Client[K, V]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call("Clear", wire.CLEAR, noArgs, ackOnly)
}

// HashCode asks the server to compute the map's hash code. This is a
// potentially expensive whole-map operation and is never invoked
// implicitly — Client deliberately does not implement a method the
// language would call implicitly either.
func (c *Client[K, V]) HashCode() (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result int32
	err := c.call("HashCode", wire.HASH_CODE, noArgs, func(buf *wire.FramedBuffer) error {
		v, err := buf.ReadInt32()
		result = v
		return err
	})
	return result, err
}

// ToString asks the server to render the whole map as a string. As
// with HashCode, this is an explicit, never-implicit method — it is
// not named String() so Client does not satisfy fmt.Stringer with an
// expensive whole-map round trip.
func (c *Client[K, V]) ToString() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ser = stringSer{}
	var result string
	err := c.call("ToString", wire.TO_STRING, noArgs, func(buf *wire.FramedBuffer) error {
		v, err := ser.Read(buf)
		result = v
		return err
	})
	return result, err
}

// ContainsKey reports whether key is present.
func (c *Client[K, V]) ContainsKey(key K) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) {
		return false, &NullKeyError{Operation: "ContainsKey"}
	}
	var result bool
	err := c.call("ContainsKey", wire.CONTAINS_KEY,
		func(buf *wire.FramedBuffer) error { return c.keySer.Write(key, buf) },
		func(buf *wire.FramedBuffer) error {
			v, err := buf.ReadBool()
			result = v
			return err
		})
	return result, err
}

// ContainsValue reports whether value is present anywhere in the map.
func (c *Client[K, V]) ContainsValue(value V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(value) {
		return false, &NullKeyError{Operation: "ContainsValue"}
	}
	var result bool
	err := c.call("ContainsValue", wire.CONTAINS_VALUE,
		func(buf *wire.FramedBuffer) error { return c.valSer.Write(value, buf) },
		func(buf *wire.FramedBuffer) error {
			v, err := buf.ReadBool()
			result = v
			return err
		})
	return result, err
}

// Get returns the value for key. ok is false if the server responded
// with a null marker.
func (c *Client[K, V]) Get(key K) (value V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) {
		err = &NullKeyError{Operation: "Get"}
		return
	}
	err = c.call("Get", wire.GET,
		func(buf *wire.FramedBuffer) error { return c.keySer.Write(key, buf) },
		func(buf *wire.FramedBuffer) error {
			present, e := buf.ReadBool()
			if e != nil || !present {
				return e
			}
			v, e := c.valSer.Read(buf)
			if e != nil {
				return e
			}
			value, ok = v, true
			return nil
		})
	return
}

// Put stores value for key and returns the prior value, if any.
// When the client is configured with PutReturnsNull, the
// *_WITHOUT_ACK variant is used and Put returns immediately after
// send, with ok always false.
func (c *Client[K, V]) Put(key K, value V) (prior V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) || isNil(value) {
		err = &NullKeyError{Operation: "Put"}
		return
	}

	tag := wire.PUT
	if c.cfg.PutReturnsNull {
		tag = wire.PUT_WITHOUT_ACK
	}
	err = c.call("Put", tag,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.valSer.Write(value, buf)
		},
		func(buf *wire.FramedBuffer) error {
			present, e := buf.ReadBool()
			if e != nil || !present {
				return e
			}
			v, e := c.valSer.Read(buf)
			if e != nil {
				return e
			}
			prior, ok = v, true
			return nil
		})
	return
}

// Remove deletes key and returns the prior value, if any. Symmetric to
// Put's *_WITHOUT_ACK shortcut via RemoveReturnsNull.
func (c *Client[K, V]) Remove(key K) (prior V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) {
		err = &NullKeyError{Operation: "Remove"}
		return
	}

	tag := wire.REMOVE
	if c.cfg.RemoveReturnsNull {
		tag = wire.REMOVE_WITHOUT_ACK
	}
	err = c.call("Remove", tag,
		func(buf *wire.FramedBuffer) error { return c.keySer.Write(key, buf) },
		func(buf *wire.FramedBuffer) error {
			present, e := buf.ReadBool()
			if e != nil || !present {
				return e
			}
			v, e := c.valSer.Read(buf)
			if e != nil {
				return e
			}
			prior, ok = v, true
			return nil
		})
	return
}

// RemoveWithValue removes key only if its current value equals value,
// reporting whether the removal happened.
func (c *Client[K, V]) RemoveWithValue(key K, value V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) || isNil(value) {
		return false, &NullKeyError{Operation: "RemoveWithValue"}
	}
	var result bool
	err := c.call("RemoveWithValue", wire.REMOVE_WITH_VALUE,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.valSer.Write(value, buf)
		},
		func(buf *wire.FramedBuffer) error {
			v, err := buf.ReadBool()
			result = v
			return err
		})
	return result, err
}

// Replace sets key's value to value only if key is already present,
// returning the prior value.
func (c *Client[K, V]) Replace(key K, value V) (prior V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) || isNil(value) {
		err = &NullKeyError{Operation: "Replace"}
		return
	}
	err = c.call("Replace", wire.REPLACE,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.valSer.Write(value, buf)
		},
		func(buf *wire.FramedBuffer) error {
			present, e := buf.ReadBool()
			if e != nil || !present {
				return e
			}
			v, e := c.valSer.Read(buf)
			if e != nil {
				return e
			}
			prior, ok = v, true
			return nil
		})
	return
}

// ReplaceWithOldAndNewValue sets key's value to newValue only if its
// current value equals oldValue, reporting whether the swap happened.
func (c *Client[K, V]) ReplaceWithOldAndNewValue(key K, oldValue, newValue V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) || isNil(oldValue) || isNil(newValue) {
		return false, &NullKeyError{Operation: "ReplaceWithOldAndNewValue"}
	}
	var result bool
	err := c.call("ReplaceWithOldAndNewValue", wire.REPLACE_WITH_OLD_AND_NEW_VALUE,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			if e := c.valSer.Write(oldValue, buf); e != nil {
				return e
			}
			return c.valSer.Write(newValue, buf)
		},
		func(buf *wire.FramedBuffer) error {
			v, err := buf.ReadBool()
			result = v
			return err
		})
	return result, err
}

// PutIfAbsent stores value for key only if key is not already present,
// returning the prior value when it was.
func (c *Client[K, V]) PutIfAbsent(key K, value V) (prior V, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) || isNil(value) {
		err = &NullKeyError{Operation: "PutIfAbsent"}
		return
	}
	err = c.call("PutIfAbsent", wire.PUT_IF_ABSENT,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.valSer.Write(value, buf)
		},
		func(buf *wire.FramedBuffer) error {
			present, e := buf.ReadBool()
			if e != nil || !present {
				return e
			}
			v, e := c.valSer.Read(buf)
			if e != nil {
				return e
			}
			prior, ok = v, true
			return nil
		})
	return
}

// KeySet returns every key, reading the streamed chunked response.
func (c *Client[K, V]) KeySet() ([]K, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []K
	err := callChunked(c, "KeySet", wire.KEY_SET, noArgs, func(buf *wire.FramedBuffer) (K, error) {
		return c.keySer.Read(buf)
	}, &result)
	return result, err
}

// Values returns every value, reading the streamed chunked response.
func (c *Client[K, V]) Values() ([]V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []V
	err := callChunked(c, "Values", wire.VALUES, noArgs, func(buf *wire.FramedBuffer) (V, error) {
		return c.valSer.Read(buf)
	}, &result)
	return result, err
}

// EntrySet returns every key/value pair, reading the streamed chunked
// response.
func (c *Client[K, V]) EntrySet() ([]Entry[K, V], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []Entry[K, V]
	err := callChunked(c, "EntrySet", wire.ENTRY_SET, noArgs, func(buf *wire.FramedBuffer) (Entry[K, V], error) {
		k, err := c.keySer.Read(buf)
		if err != nil {
			return Entry[K, V]{}, err
		}
		v, err := c.valSer.Read(buf)
		if err != nil {
			return Entry[K, V]{}, err
		}
		return Entry[K, V]{Key: k, Value: v}, nil
	}, &result)
	return result, err
}

func noArgs(*wire.FramedBuffer) error { return nil }

func ackOnly(*wire.FramedBuffer) error { return nil }

// isNil reports whether v is a nil pointer/interface/map/slice/chan/
// func. For value types (string, int, structs, ...) this is always
// false, matching Go's own semantics: a value type has no null state
// to reject. Plain interface comparison against nil is unreliable here
// because a generic T instantiated to a pointer type produces a
// non-nil interface even when the pointer itself is nil, so this goes
// through reflect.
func isNil[T any](v T) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// stringSer is used internally by ToString to decode the server's
// UTF-8 string object; it is independent of the Client's configured K/V
// serializers.
type stringSer struct{}

func (stringSer) Read(buf *wire.FramedBuffer) (string, error) {
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
