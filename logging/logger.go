// Package logging adapts dragonboat's logger.ILogger facade for use by
// this module's own packages, giving the client's transport, protocol
// engine, and async adapter a consistent, leveled logger without
// pulling in dragonboat's consensus engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

// Output is where every rmapLogger writes rendered lines. It defaults to
// stderr (diagnostics, not program output) and can be redirected by a
// caller that wants logs routed elsewhere (a file, a test buffer).
var Output io.Writer = os.Stderr

var outputMu sync.Mutex

func writeLine(line string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	_, _ = io.WriteString(Output, line)
}

// rmapLogger implements logger.ILogger by rendering each call as a
// single logfmt-style line (time, level, logger, msg), which greps and
// pipes into structured-log tooling more easily than a fixed-width
// column layout.
type rmapLogger struct {
	name  string
	level logger.LogLevel
}

var levelNames = map[logger.LogLevel]string{
	logger.DEBUG:    "debug",
	logger.INFO:     "info",
	logger.WARNING:  "warn",
	logger.ERROR:    "error",
	logger.CRITICAL: "critical",
}

func (l *rmapLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *rmapLogger) Debugf(format string, args ...interface{}) {
	l.emit(logger.DEBUG, format, args...)
}

func (l *rmapLogger) Infof(format string, args ...interface{}) {
	l.emit(logger.INFO, format, args...)
}

func (l *rmapLogger) Warningf(format string, args ...interface{}) {
	l.emit(logger.WARNING, format, args...)
}

func (l *rmapLogger) Errorf(format string, args ...interface{}) {
	l.emit(logger.ERROR, format, args...)
}

// Panicf always panics with the formatted message; it additionally logs
// at CRITICAL when the logger's own level permits, the same
// level-gated-logging-vs-always-panicking split dragonboat's other
// ILogger implementations draw.
func (l *rmapLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.level >= logger.CRITICAL {
		l.render(logger.CRITICAL, msg)
	}
	panic(msg)
}

// emit renders msg if level clears this logger's configured threshold.
func (l *rmapLogger) emit(level logger.LogLevel, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.render(level, fmt.Sprintf(format, args...))
}

func (l *rmapLogger) render(level logger.LogLevel, msg string) {
	writeLine(fmt.Sprintf("time=%s level=%s logger=%q msg=%q\n",
		time.Now().UTC().Format(time.RFC3339Nano), levelNames[level], l.name, msg))
}

// CreateLogger is a logger.Factory usable with logger.SetLoggerFactory.
func CreateLogger(pkgName string) logger.ILogger {
	return &rmapLogger{name: pkgName, level: logger.INFO}
}

// ParseLevel converts a string level to logger.LogLevel, defaulting to
// INFO for an unrecognized value instead of panicking, since a client
// library must not crash a caller's process over a bad log-level flag.
func ParseLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warning", "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	case "critical":
		return logger.CRITICAL
	default:
		return logger.INFO
	}
}

// clientLoggerNames are the named loggers this module's own packages
// use; the CLI binds them all to a single configured level.
var clientLoggerNames = []string{
	"rmap",
	"rmap/transport",
	"rmap/asyncadapter",
}

// Init installs the logger factory and sets the level for this module's
// own named loggers. It does not touch dragonboat's internal raft/rsm
// loggers since this module never runs the consensus engine.
func Init(level string) {
	logger.SetLoggerFactory(CreateLogger)
	lvl := ParseLevel(level)
	for _, name := range clientLoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
}
