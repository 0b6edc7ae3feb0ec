// Package vbanlog provides the default structured logger used throughout
// this module. Every component accepts an injected *slog.Logger and falls
// back to Default() when none is given.
package vbanlog

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Level selects the minimum severity the default logger emits.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var def = New(LevelInfo)

// New builds a colorized console logger at the given level, grounded on
// USA-RedDragon-DMRHub's slog.New(tint.NewHandler(...)) setup.
func New(level Level) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

// Default returns the package-wide default logger. Components should accept
// a *slog.Logger via constructor option and fall back to this only when the
// caller supplied none.
func Default() *slog.Logger {
	return def
}

// SetDefault replaces the package-wide default logger, e.g. to raise
// verbosity or redirect output in a cmd/ entrypoint.
func SetDefault(l *slog.Logger) {
	def = l
}
