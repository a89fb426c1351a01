// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the structured logger used across the module.
// It is backed by the go-ethereum slog handlers.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// Logger writes leveled records made of a message and key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// Levels accepted by ParseLevel.
const (
	LevelTrace = gethlog.LevelTrace
	LevelDebug = gethlog.LevelDebug
	LevelInfo  = gethlog.LevelInfo
	LevelWarn  = gethlog.LevelWarn
	LevelError = gethlog.LevelError
	LevelCrit  = gethlog.LevelCrit
)

// Output formats accepted by NewHandler.
const (
	FormatTerminal = "terminal"
	FormatLogfmt   = "logfmt"
	FormatJSON     = "json"
)

// Root returns the root logger.
func Root() gethlog.Logger {
	return gethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l gethlog.Logger) {
	gethlog.SetDefault(l)
}

// New creates a logger on top of the given handler.
func New(h slog.Handler) gethlog.Logger {
	return gethlog.NewLogger(h)
}

// WithContext returns a logger that prefixes ctx to every record.
// The returned logger follows the root logger even if it is replaced later.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trce":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	case "crit", "critical":
		return LevelCrit, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewHandler builds a handler writing in format to w at the given level.
// The terminal format is coloured when w is a tty.
func NewHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	switch format {
	case "", FormatTerminal:
		useColor := false
		if f, ok := w.(*os.File); ok {
			useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return gethlog.NewTerminalHandlerWithLevel(w, level, useColor), nil
	case FormatLogfmt:
		return gethlog.LogfmtHandlerWithLevel(w, level), nil
	case FormatJSON:
		return gethlog.JSONHandlerWithLevel(w, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// Setup installs a root logger writing to w.
func Setup(w io.Writer, format, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	h, err := NewHandler(w, format, lvl)
	if err != nil {
		return err
	}
	SetDefault(New(h))
	return nil
}

// lazyLogger resolves the root logger on every record.
type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) merge(ctx []any) []any {
	if len(l.ctx) == 0 {
		return ctx
	}
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(merged, l.ctx...), ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { gethlog.Root().Trace(msg, l.merge(ctx)...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { gethlog.Root().Debug(msg, l.merge(ctx)...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { gethlog.Root().Info(msg, l.merge(ctx)...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { gethlog.Root().Warn(msg, l.merge(ctx)...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { gethlog.Root().Error(msg, l.merge(ctx)...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { gethlog.Root().Crit(msg, l.merge(ctx)...) }
