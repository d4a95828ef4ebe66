package finetract

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a console logger suitable for the pipeline. Components
// default to a disabled logger when none is supplied.
func NewLogger(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}
