package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// Commands use it for usage errors that happen before logging is configured.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "gd: "+format+"\n", args...)
	os.Exit(1)
}
