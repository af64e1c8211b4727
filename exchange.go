package rmap

import (
	"time"

	"github.com/ValentinKolb/rmap/transport"
)

// exchange runs a single request/response round-trip with
// retry-on-disconnect. A retried send reuses the exact same request
// bytes — and therefore the same transaction id — on the assumption
// that the server treats a replayed transaction id idempotently.
func (c *Client[K, V]) exchange(op string, req preparedRequest, deadline time.Time) error {
	for {
		if !c.conn.Connected() {
			if err := c.conn.LazyConnect(deadline); err != nil {
				if _, isDeadline := err.(*transport.DeadlineExceededError); isDeadline {
					c.metrics.recordError(op, "timeout")
					return &RemoteCallTimeoutError{Operation: op}
				}
				c.metrics.recordError(op, "io")
				c.disconnect()
				return &IORuntimeError{Operation: op, Err: err}
			}
			c.metrics.recordReconnect()
		}

		sendErr := c.conn.SendAll(req.bytes, deadline)
		if sendErr == nil {
			c.metrics.recordRequest(op, len(req.bytes))
			if !req.expectsResp {
				return nil
			}
			start := time.Now()
			recvLen, readErr := c.readFrame(req.txnID, deadline)
			c.metrics.roundTripLatency.UpdateSince(start)
			if readErr == nil {
				c.metrics.recordResponse(recvLen)
				return nil
			}
			if isDisconnect(readErr) {
				if !time.Now().Before(deadline) {
					c.metrics.recordError(op, "timeout")
					return &RemoteCallTimeoutError{Operation: op}
				}
				log.Warningf("%s: connection lost awaiting response, reconnecting and retrying", op)
				continue
			}
			if _, isProtoViolation := readErr.(*ProtocolViolationError); isProtoViolation {
				c.metrics.recordError(op, "protocol_violation")
				c.disconnect()
				return readErr
			}
			if failure, isRemote := readErr.(*RemoteFailure); isRemote {
				c.metrics.recordError(op, "remote_failure")
				return failure
			}
			c.metrics.recordError(op, "io")
			c.disconnect()
			return &IORuntimeError{Operation: op, Err: readErr}
		}

		if isDisconnect(sendErr) {
			if !time.Now().Before(deadline) {
				c.metrics.recordError(op, "timeout")
				return &RemoteCallTimeoutError{Operation: op}
			}
			log.Warningf("%s: connection lost sending request, reconnecting and retrying", op)
			continue
		}

		c.metrics.recordError(op, "io")
		c.disconnect()
		return &IORuntimeError{Operation: op, Err: sendErr}
	}
}

func isDisconnect(err error) bool {
	_, ok := err.(*transport.DisconnectedError)
	return ok
}
