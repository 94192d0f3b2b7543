package logger

import corelogger "github.com/kilianp07/gridsched/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with component. Output format follows the
// APP_ENV variable and the level set through SetLevel.
func New(component string) Logger {
	return NewZerologLogger(component)
}
