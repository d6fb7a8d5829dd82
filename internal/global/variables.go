package global

var (
	PID       int // this process, reported by relays
	Verbosity int // log level chosen on the command line (Verbosity* constants)
)
