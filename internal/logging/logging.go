// Package logging builds the slog loggers used across the application.
package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a slog
// level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MaskEmail hides every e-mail address in s.
func MaskEmail(s string) string {
	return emailRegex.ReplaceAllString(s, "***@***.***")
}

// MaskID keeps the first 8 characters of an id.
func MaskID(id string) string {
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// New returns a text logger writing to stderr.
func New(level string, production bool) *slog.Logger {
	return NewWithWriter(os.Stderr, level, production)
}

// NewWithWriter returns a text logger writing to w. In production, e-mail
// addresses are masked in every string attribute and "*_id" attributes
// are shortened.
func NewWithWriter(w io.Writer, level string, production bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if production {
		opts.ReplaceAttr = mask
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func mask(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	v := a.Value.String()
	if a.Key == "id" || strings.HasSuffix(a.Key, "_id") {
		return slog.String(a.Key, MaskID(v))
	}
	if a.Key == slog.MessageKey {
		return a
	}
	return slog.String(a.Key, MaskEmail(v))
}
