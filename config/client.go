// Package config holds the client-facing configuration surface: a flat
// struct with a String() rendering, scoped to a single remote endpoint
// since the protocol engine owns exactly one TCP connection per client
// instance.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClientConfig configures a single stateless remote map client.
type ClientConfig struct {
	// RemoteAddress is the host:port of the remote map server.
	RemoteAddress string

	// Timeout bounds every blocking call the client makes, including
	// connect and reconnect attempts. WithDefaults (applied by rmap.New)
	// replaces zero with DefaultTimeout.
	Timeout time.Duration

	// Name labels this client in its own metrics (see metrics.go's
	// {client=%q} label); no log line carries it. It is purely a local label:
	// the wire handshake is the single fixed handshakeByte defined in
	// transport/connection.go and never carries Name.
	Name string

	// PutReturnsNull, when true, tells the client not to request the
	// previous value from PUT operations, letting the server skip
	// computing and transmitting it back.
	PutReturnsNull bool

	// RemoveReturnsNull does the same for REMOVE.
	RemoveReturnsNull bool

	// EntrySizeHint seeds the initial FramedBuffer capacity so typical
	// request/response pairs do not need to resize on the first call.
	EntrySizeHint int
}

// DefaultEntrySizeHint is a small but non-trivial starting buffer size,
// rather than growing from zero on every client.
const DefaultEntrySizeHint = 256

// DefaultTimeout is applied when ClientConfig.Timeout is the zero value.
const DefaultTimeout = 30 * time.Second

// WithDefaults returns a copy of c with zero-valued fields replaced by
// sane defaults.
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.EntrySizeHint <= 0 {
		c.EntrySizeHint = DefaultEntrySizeHint
	}
	return c
}

// String returns a formatted, human-readable representation of the
// configuration.
func (c ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Remote Map Client")
	addField("Remote Address", c.RemoteAddress)
	addField("Name", c.Name)
	addField("Timeout", c.Timeout.String())
	addField("Put Returns Null", strconv.FormatBool(c.PutReturnsNull))
	addField("Remove Returns Null", strconv.FormatBool(c.RemoveReturnsNull))
	addField("Entry Size Hint", strconv.Itoa(c.EntrySizeHint))

	return sb.String()
}
