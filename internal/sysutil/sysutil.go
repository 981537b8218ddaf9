// Package sysutil holds small process-level helpers used by the
// entrypoint, currently the zerolog level plumbing.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// ParseLevel maps a level name (case-insensitive, surrounding whitespace
// ignored) to its zerolog level. "warning" is accepted as an alias for
// "warn"; empty or unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// SetLogLevel applies the named level globally and returns what was applied.
func SetLogLevel(name string) zerolog.Level {
	lvl := ParseLevel(name)
	zerolog.SetGlobalLevel(lvl)
	return lvl
}
