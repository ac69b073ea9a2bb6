package logger

// New builds a logger from config. Callers own the returned instance and
// inject it into their components; call Shutdown when done to release any
// file writers.
func New(config Config) (Logger, error) {
	return NewSlogLogger(config)
}

// NullLogger discards everything. It stands in wherever a collaborator
// requires a Logger and the output doesn't matter, tests mostly.
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, args ...any) {}
func (n *NullLogger) Info(msg string, args ...any)  {}
func (n *NullLogger) Warn(msg string, args ...any)  {}
func (n *NullLogger) Error(msg string, args ...any) {}
func (n *NullLogger) With(args ...any) Logger       { return n }
func (n *NullLogger) Sync() error                   { return nil }
func (n *NullLogger) Shutdown() error               { return nil }
