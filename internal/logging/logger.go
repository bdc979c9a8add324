package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to stdout, where the Lambda runtime
// forwards it to CloudWatch Logs.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal, panic, disabled.
func New(level, component string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, component)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, component string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	l := zerolog.New(w).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(lvl)

	return l, nil
}

// Bootstrap is the info-level logger used before configuration is loaded.
func Bootstrap(component string) zerolog.Logger {
	l, _ := New(zerolog.InfoLevel.String(), component)
	return l
}
