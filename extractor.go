package dumpstream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/arnodel/dumpstream/internal/debug"
	"github.com/arnodel/dumpstream/transform"
)

// DefaultChunkSize is the number of decompressed bytes read per iteration
// when WithChunkSize is not given.  It comfortably exceeds the largest
// record in current Wikidata dumps; smaller sizes remain correct but make
// splitting take several iterations per record.
const DefaultChunkSize = 512 * 1024

// Counters accumulates totals over one run.
type Counters struct {
	BytesRead      int64 // decompressed bytes consumed from the source
	RecordsSeen    int64 // complete records discovered
	RecordsEmitted int64 // records whose transformation produced output
	RecordsSkipped int64 // records skipped after a transformation error
}

// An Extractor drives one extraction run: it reads decompressed chunks from
// a source, reassembles them into complete records, transforms each record
// and writes the results to a sink in input order.
//
// The source, the sink and the transformer are owned by the Extractor for
// the duration of Run and must not be used concurrently with it.
type Extractor struct {
	src  io.Reader
	sink *bufio.Writer
	tr   transform.Transformer

	chunkSize       int
	continueOnError bool
	sentinel        []byte
	progress        func(Counters)
}

// An Option configures an Extractor.
type Option func(*Extractor)

// WithChunkSize sets the size of the reusable chunk buffer.
func WithChunkSize(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithContinueOnError makes the Extractor write the sentinel and keep going
// when a record fails to transform, instead of aborting the run.
func WithContinueOnError(on bool) Option {
	return func(e *Extractor) {
		e.continueOnError = on
	}
}

// WithSentinel sets the bytes written in place of a failing record under
// WithContinueOnError.  The default is "null\n"; an empty sentinel means
// failing records are skipped silently.
func WithSentinel(sentinel []byte) Option {
	return func(e *Extractor) {
		e.sentinel = sentinel
	}
}

// WithProgress registers a function called once per chunk iteration with the
// current counters, so callers can display progress.  It is called from the
// extraction goroutine and should return quickly.
func WithProgress(f func(Counters)) Option {
	return func(e *Extractor) {
		e.progress = f
	}
}

// New returns an Extractor reading decompressed dump bytes from src and
// writing transformed records to sink.
func New(src io.Reader, sink io.Writer, tr transform.Transformer, opts ...Option) *Extractor {
	e := &Extractor{
		src:       src,
		sink:      bufio.NewWriter(sink),
		tr:        tr,
		chunkSize: DefaultChunkSize,
		sentinel:  []byte("null\n"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run performs the extraction until the dump's closing marker is reached.
// It returns the counters accumulated so far together with the first fatal
// error, if any.  Output written before a fatal error stays in the sink,
// which is flushed on every return path.  The context is checked once per
// chunk iteration, so cancellation takes effect between chunks, never
// mid-record.
func (e *Extractor) Run(ctx context.Context) (Counters, error) {
	var c Counters
	if err := e.prime(&c); err != nil {
		return e.abort(c, err)
	}
	chunk := make([]byte, e.chunkSize)
	var buf reassembly
	for {
		if err := ctx.Err(); err != nil {
			return e.abort(c, err)
		}
		n, err := readChunk(e.src, chunk)
		c.BytesRead += int64(n)
		if n > 0 {
			if derr := buf.appendChunk(chunk[:n]); derr != nil {
				return e.abort(c, derr)
			}
		}
		records, tail := splitRecords(buf.pending)
		for _, record := range records {
			if werr := e.handleRecord(record, &c); werr != nil {
				return e.abort(c, werr)
			}
		}
		if final, ok := terminalRecord(tail); ok {
			debug.Printf("final record after %d bytes", c.BytesRead)
			if werr := e.handleRecord(final, &c); werr != nil {
				return e.abort(c, werr)
			}
			if e.progress != nil {
				e.progress(c)
			}
			if ferr := e.sink.Flush(); ferr != nil {
				return c, &SinkError{Err: ferr}
			}
			return c, nil
		}
		buf.reset(tail)
		if e.progress != nil {
			e.progress(c)
		}
		// Records decoded before a read failure have been processed above,
		// so they stay in the sink.
		if err == io.EOF {
			return e.abort(c, ErrUnexpectedEOF)
		}
		if err != nil {
			return e.abort(c, &SourceError{Err: err})
		}
	}
}

// prime consumes the "[\n" opening the dump, which never contributes to a
// record.
func (e *Extractor) prime(c *Counters) error {
	open := make([]byte, len(openMarker))
	n, err := io.ReadFull(e.src, open)
	c.BytesRead += int64(n)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		return ErrUnexpectedEOF
	default:
		return &SourceError{Err: err}
	}
	if !bytes.Equal(open, openMarker) {
		return &DecodeError{Msg: fmt.Sprintf("dump must open with %q, got %q", openMarker, open)}
	}
	return nil
}

// handleRecord transforms one complete record and writes the result,
// applying the error continuation policy.
func (e *Extractor) handleRecord(record []byte, c *Counters) error {
	c.RecordsSeen++
	out, err := e.tr.Transform(record)
	if err != nil {
		if !e.continueOnError {
			return &TransformError{Record: record, Err: err}
		}
		c.RecordsSkipped++
		if len(e.sentinel) > 0 {
			if _, werr := e.sink.Write(e.sentinel); werr != nil {
				return &SinkError{Err: werr}
			}
		}
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	if _, werr := e.sink.Write(out); werr != nil {
		return &SinkError{Err: werr}
	}
	c.RecordsEmitted++
	return nil
}

// abort flushes whatever was successfully written before the error, then
// returns it.  The flush is best effort: the original error takes
// precedence over a flush failure.
func (e *Extractor) abort(c Counters, err error) (Counters, error) {
	e.sink.Flush()
	return c, err
}

// readChunk fills buf as far as possible.  It returns io.EOF once the
// source is exhausted, possibly together with a last short read.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
