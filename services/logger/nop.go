package logsvc

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/trezcool/fyp/core"
)

// NopLogger drops everything but fatal entries, which still exit. For tests.
type NopLogger struct {
	log zerolog.Logger
}

var _ core.Logger = (*NopLogger)(nil)

func NewNopLogger() *NopLogger {
	return &NopLogger{log: zerolog.New(io.Discard)}
}

func (l NopLogger) Debug(string, ...interface{}) {}
func (l NopLogger) Info(string, ...interface{})  {}
func (l NopLogger) Warn(string, ...interface{})  {}
func (l NopLogger) Error(string, ...interface{}) {}

func (l NopLogger) Fatal(msg string, _ ...interface{}) {
	l.log.Fatal().Msg(msg)
}
