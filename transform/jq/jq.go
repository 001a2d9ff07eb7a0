// Package jq evaluates a jq filter against individual dump records.
//
// The filter expression is compiled once and the compiled program is reused
// for every record of a run, mirroring how the jq command line tool
// processes a stream of inputs.
package jq

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/arnodel/dumpstream/transform"
)

// A CompileError is an invalid filter expression.  It is detected when the
// program is compiled, before any record is processed.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling jq filter %q: %s", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// A Program is a compiled jq filter.
type Program struct {
	code *gojq.Code
}

var _ transform.Transformer = &Program{}

// Compile parses and compiles a jq filter expression.
func Compile(expr string) (*Program, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	return &Program{code: code}, nil
}

// Transform runs the filter on one record.  Every value the filter produces
// is marshaled and followed by a newline, like the jq command line tool
// does.  A filter producing no values (e.g. a select that doesn't match)
// yields an empty result.  A record that is not valid JSON, or a filter
// error at runtime, yields a non-nil error.
func (p *Program) Transform(record []byte) ([]byte, error) {
	var value any
	if err := json.Unmarshal(record, &value); err != nil {
		return nil, fmt.Errorf("record is not valid JSON: %w", err)
	}
	var out bytes.Buffer
	iter := p.code.Run(value)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, err
		}
		b, err := gojq.Marshal(v)
		if err != nil {
			return nil, err
		}
		out.Write(b)
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
