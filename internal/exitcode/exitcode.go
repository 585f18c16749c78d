package exitcode

const (
	Success         = 0
	UsageError      = 1
	ConfigError     = 2
	CodingError     = 3
	BuildError      = 4
	ValidationError = 5
	DBConnError     = 6
	PartialSuccess  = 7
)
