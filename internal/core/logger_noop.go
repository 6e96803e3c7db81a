package core

// NoOpLogger discards everything. Used by tests and by commands that want a
// clean stdout for piping.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, args ...any) {}
func (NoOpLogger) Info(msg string, args ...any)  {}
func (NoOpLogger) Warn(msg string, args ...any)  {}
func (NoOpLogger) Error(msg string, args ...any) {}
func (n NoOpLogger) With(args ...any) Logger     { return n }
func (NoOpLogger) SetLevel(level LogLevel)       {}
