package wmfdb

import (
	"fmt"
)

// ValueError reports malformed input that a human must fix: bad address
// syntax, unknown sections, invalid config values, and so on. The message
// identifies the offending input.
type ValueError struct {
	Message string
}

func (e ValueError) Error() string {
	return e.Message
}

func ValueErrorf(format string, v ...interface{}) error {
	return ValueError{Message: fmt.Sprintf(format, v...)}
}

// IOError reports failure to read a file that was expected to be readable.
// A file that simply doesn't exist during my.cnf discovery is not an IOError;
// those files are skipped.
type IOError struct {
	Message string
	Err     error
}

func (e IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e IOError) Unwrap() error {
	return e.Err
}

func IOErrorf(err error, format string, v ...interface{}) error {
	return IOError{Message: fmt.Sprintf(format, v...), Err: err}
}
