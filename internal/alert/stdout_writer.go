package alert

import (
	"os"

	"golang.org/x/term"

	"wildfire-sim/internal/config"
)

// NewStdoutWriter returns a colorized writer when STDOUT is a terminal and
// a JSON lines writer otherwise.
func NewStdoutWriter(cfg *config.Config) Writer {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return NewColorStdoutWriter(cfg)
	}
	return NewJSONStdoutWriter()
}
