package console

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ShouldColorize reports whether ANSI colors should be written to writer.
// NO_COLOR disables colors regardless of the terminal.
func ShouldColorize(writer io.Writer) bool {
	if value, ok := os.LookupEnv("NO_COLOR"); ok && strings.TrimSpace(value) != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
