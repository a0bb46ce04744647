// Package logging builds the leveled JSON logger shared by echo and the
// background workers.
package logging

import (
	"io"
	"strings"

	"github.com/labstack/gommon/log"
)

// Header is prepended to every entry; fields passed with the *j methods
// are merged into the same JSON object.
const Header = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`

// New returns a logger writing JSON lines to w at the given level.
func New(prefix, level string, w io.Writer) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(Header)
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps a level name to a gommon level, defaulting to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}
