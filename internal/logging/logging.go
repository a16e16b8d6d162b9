package logging

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w. Format "human" selects the console
// writer, anything else emits JSON lines.
func New(format, level string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
		}
	}

	output := w
	if format == "human" {
		output = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}
