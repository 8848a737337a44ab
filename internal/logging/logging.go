// Package logging builds the slog loggers used by the command line tool.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}

	return l, nil
}

// New returns a logger writing to w with the given level and format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// FieldAttrs returns the attributes describing a rejected field.
func FieldAttrs(record, field string, position int, err error) []any {
	return []any{
		slog.String("record", record),
		slog.String("field", field),
		slog.Int("position", position),
		slog.Any("error", err),
	}
}
