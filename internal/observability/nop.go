package observability

import "context"

// nopLogger is a Logger that discards everything.
type nopLogger struct{}

// NopLogger returns a logger that discards all log entries. It is the
// default for components constructed without an explicit logger and is
// convenient in tests.
func NopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...Field) {}

func (nopLogger) Info(string, ...Field) {}

func (nopLogger) Warn(string, ...Field) {}

func (nopLogger) Error(string, ...Field) {}

func (nopLogger) Fatal(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }

func (n nopLogger) WithContext(context.Context) Logger { return n }

func (nopLogger) Sync() error { return nil }
