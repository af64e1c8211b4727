// Package rmap implements a stateless client for a remote key-value map
// server. Every operation on a Client is serialized into a framed
// binary request over one long-lived TCP connection and decoded from a
// matching framed binary response; the client owns no data itself.
//
// A Client is safe for use by one goroutine's logical request at a
// time — callers needing parallelism should construct multiple Client
// instances rather than share one. Key and value encoding is delegated
// to the serializer.Serializer[T] collaborators passed to New.
package rmap
