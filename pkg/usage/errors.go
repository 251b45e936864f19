package usage

import "fmt"

// InvalidCodeError represents a configuration code that cannot be embedded in the matcher
type InvalidCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid configuration code %q: %s", e.Code, e.Reason)
}

// IOError represents a failure to read a scanned file or write the report
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigSourceError represents a code list that cannot be parsed.
// Line is 1-based and zero when the failure is not tied to a record.
type ConfigSourceError struct {
	Path string
	Line int
	Err  error
}

func (e *ConfigSourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config source %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("config source %s: %v", e.Path, e.Err)
}

func (e *ConfigSourceError) Unwrap() error {
	return e.Err
}
