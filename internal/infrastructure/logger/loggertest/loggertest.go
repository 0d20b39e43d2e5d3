// Package loggertest provides a LoggerPort that writes through testing.TB.
package loggertest

import (
	"testing"

	"voice-browser/internal/infrastructure/logger"

	"go.uber.org/zap/zaptest"
)

// New returns a logger whose output is attached to t and shown on failure.
func New(t testing.TB) *logger.LoggerAdapter {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}
