package rmap

import "fmt"

// NullKeyError is raised synchronously, with no I/O, when a caller
// passes a nil key or value where the protocol disallows it.
type NullKeyError struct {
	Operation string
}

func (e *NullKeyError) Error() string {
	return fmt.Sprintf("rmap: %s: key and value must not be nil", e.Operation)
}

// TypeMismatchError is raised when an entry in PutAll fails to encode
// for a reason other than running out of buffer space. Raising this
// error marks the connection Disconnected: the varint entry count
// already written to the wire no longer matches what will be sent.
type TypeMismatchError struct {
	Operation string
	Detail    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("rmap: %s: type mismatch: %s", e.Operation, e.Detail)
}

// UnsupportedOperationError is raised synchronously, with no I/O, for
// operations the stateless client never implements (file-backed and
// locked-access variants inherited from the richer local map API).
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("rmap: %s is not supported by the remote map client", e.Operation)
}

// RemoteCallTimeoutError is raised when a deadline passes during
// connect, send, or receive. The underlying socket is closed; the
// client itself remains usable and will reconnect on the next call.
type RemoteCallTimeoutError struct {
	Operation string
}

func (e *RemoteCallTimeoutError) Error() string {
	return fmt.Sprintf("rmap: %s: timed out before deadline", e.Operation)
}

// ProtocolViolationError is raised when a response's echoed
// transaction id does not match the id the request was sent with.
// The connection is closed, since framing is desynchronized, and no
// resync is attempted; the Client stays open and the next operation
// reconnects.
type ProtocolViolationError struct {
	Expected uint64
	Got      uint64
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("rmap: protocol violation: expected txn id %d, got %d", e.Expected, e.Got)
}

// IORuntimeError wraps any I/O error that is not a recognized
// disconnect. The connection is closed; the Client stays open and the
// next operation reconnects.
type IORuntimeError struct {
	Operation string
	Err       error
}

func (e *IORuntimeError) Error() string {
	return fmt.Sprintf("rmap: %s: I/O error: %v", e.Operation, e.Err)
}

func (e *IORuntimeError) Unwrap() error { return e.Err }

// ClosedChannelError is raised when an operation is attempted on a
// client that has already been closed by its owner.
type ClosedChannelError struct{}

func (e *ClosedChannelError) Error() string {
	return "rmap: client is closed"
}

// StackFrame is one frame of a server-side stack trace, reconstructed
// from the remote exception's serialized form rather than spliced into
// a local exception via reflection.
type StackFrame struct {
	ClassName  string
	MethodName string
	FileName   string
	LineNumber int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s.%s(%s:%d)", f.ClassName, f.MethodName, f.FileName, f.LineNumber)
}

// RemoteFailure is a first-class representation of a server-side
// exception, carrying the server's exception class name, message, and
// stack trace, plus a synthetic frame identifying the remote endpoint
// the call was made against.
type RemoteFailure struct {
	ServerClassName string
	ServerMessage   string
	ServerStack     []StackFrame
	RemoteHost      string
	RemotePort      int
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("rmap: remote failure: %s: %s (~ remote tcp ~ %s %d)",
		e.ServerClassName, e.ServerMessage, e.RemoteHost, e.RemotePort)
}

// RemoteFrame returns a synthetic stack frame identifying the remote
// endpoint the failed call was made against, standing in for a local
// stack frame a client-side exception would otherwise carry.
func (e *RemoteFailure) RemoteFrame() StackFrame {
	return StackFrame{
		ClassName:  "~ remote",
		MethodName: "tcp",
		FileName:   fmt.Sprintf("%s:%d", e.RemoteHost, e.RemotePort),
	}
}
