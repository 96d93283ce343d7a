package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// newLogger returns a JSON logger on w with timestamps, filtered at level.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
