package monthgrid

import "errors"

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("monthgrid: invalid calendar configuration")

// ConfigurationError reports that a Calendar could not resolve a usable
// month for a reference date.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "monthgrid: calendar configuration: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErr(reason string, err error) error {
	return &ConfigurationError{Reason: reason, Err: err}
}
