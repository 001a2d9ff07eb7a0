//go:build debug

// Package debug provides tracing for the extraction engine that compiles to
// nothing unless the "debug" build tag is set.
package debug

import "log"

func Printf(msg string, args ...any) {
	log.Printf(msg, args...)
}

const On = true
