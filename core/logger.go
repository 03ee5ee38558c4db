package core

// Logger is the application-wide structured logger. Implementations may
// attach extra context from args (e.g. the acting user) to error reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
