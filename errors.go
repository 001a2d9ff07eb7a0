package dumpstream

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the source runs out before the closing
// "\n]" marker has been seen, meaning the dump is truncated or malformed.
var ErrUnexpectedEOF = errors.New("input exhausted before the closing marker")

// A SourceError is a failure to read from the decompressing source, for
// example because the compressed stream is corrupted.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reading source: %s", e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// A DecodeError means the decompressed bytes could not be interpreted as the
// expected dump text, either because they are not valid UTF-8 or because a
// framing marker is missing.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string {
	return "decoding input: " + e.Msg
}

// A TransformError is a record whose transformation failed.  Under the
// fail-fast policy it aborts the run; under the fail-soft policy the
// Extractor counts it and substitutes the sentinel instead.
type TransformError struct {
	Record []byte
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming record %s: %s", abbreviate(e.Record), e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// A SinkError is a failure to write to or flush the output destination.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("writing output: %s", e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// abbreviate keeps error messages readable when a record is huge.
func abbreviate(record []byte) string {
	const limit = 200
	if len(record) <= limit {
		return string(record)
	}
	return string(record[:limit]) + "..."
}
