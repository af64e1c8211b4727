package rmap

import "github.com/ValentinKolb/rmap/wire"

// MapForKey applies fn, a server-understood function object encoded via
// the ObjectSerializer, to the value currently stored at key and returns
// the server's computed result without transferring the value itself
// over the wire. fn's concrete shape is a contract between caller and
// server; this client only carries it opaquely.
func (c *Client[K, V]) MapForKey(key K, fn any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) {
		return nil, &NullKeyError{Operation: "MapForKey"}
	}
	var result any
	err := c.call("MapForKey", wire.MAP_FOR_KEY,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.objSer.WriteObject(fn, buf)
		},
		func(buf *wire.FramedBuffer) error {
			v, e := c.objSer.ReadObject(buf)
			result = v
			return e
		})
	return result, err
}

// UpdateForKey applies fn to the value at key on the server, in place,
// and returns whatever result fn's server-side evaluation produces.
// Symmetric to MapForKey; the distinction (read-only map vs. mutating
// update) is the server's to enforce, not this client's.
func (c *Client[K, V]) UpdateForKey(key K, fn any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isNil(key) {
		return nil, &NullKeyError{Operation: "UpdateForKey"}
	}
	var result any
	err := c.call("UpdateForKey", wire.UPDATE_FOR_KEY,
		func(buf *wire.FramedBuffer) error {
			if e := c.keySer.Write(key, buf); e != nil {
				return e
			}
			return c.objSer.WriteObject(fn, buf)
		},
		func(buf *wire.FramedBuffer) error {
			v, e := c.objSer.ReadObject(buf)
			result = v
			return e
		})
	return result, err
}
