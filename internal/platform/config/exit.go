package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal startup error on stderr and terminates the process
// with exit code 1. The landgiver CLIs use it for failures before the
// structured logger exists.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
