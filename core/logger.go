package core

// Logger is implemented by services/logger.
// args may carry errors, maps of extra fields, or an Identity of the acting user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Identity is the logged-in person attached to log entries. Never carries secrets.
type Identity struct {
	ID       string
	Username string
	Email    string
}
