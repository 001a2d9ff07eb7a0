// Package progress renders a single-line progress display on a terminal.
// It redraws in place with a carriage return and throttles itself so huge
// runs don't spend their time printing.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// ANSI codes used when colors are enabled.
var (
	green = "\033[32m"
	cyan  = "\033[36m"
	reset = "\033[0m"
)

// A Reporter writes progress lines to w, at most once per second.
type Reporter struct {
	w      io.Writer
	colors bool

	start    time.Time
	last     time.Time
	interval time.Duration
}

func NewReporter(w io.Writer, colors bool) *Reporter {
	return &Reporter{
		w:        w,
		colors:   colors,
		start:    time.Now(),
		interval: time.Second,
	}
}

// Records redraws the extraction progress line, unless the previous redraw
// was less than an interval ago.
func (r *Reporter) Records(bytesRead, seen, emitted int64) {
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	var rate uint64
	if elapsed := now.Sub(r.start).Seconds(); elapsed > 0 {
		rate = uint64(float64(bytesRead) / elapsed)
	}
	fmt.Fprintf(r.w, "\r%s read (%s/s) - %d records seen, %d emitted",
		r.paint(green, humanize.Bytes(uint64(bytesRead))), humanize.Bytes(rate), seen, emitted)
}

// Bytes redraws a byte-count progress line, used while downloading.  The
// total may be -1 when unknown.
func (r *Reporter) Bytes(done, total int64) {
	now := time.Now()
	if now.Sub(r.last) < r.interval {
		return
	}
	r.last = now
	if total > 0 {
		fmt.Fprintf(r.w, "\r%s / %s downloaded",
			r.paint(cyan, humanize.Bytes(uint64(done))), humanize.Bytes(uint64(total)))
	} else {
		fmt.Fprintf(r.w, "\r%s downloaded", r.paint(cyan, humanize.Bytes(uint64(done))))
	}
}

// Finish overwrites the progress line with a final summary and a newline.
func (r *Reporter) Finish(bytesRead, seen, emitted, skipped int64) {
	elapsed := time.Since(r.start).Round(time.Second)
	fmt.Fprintf(r.w, "\r%s: processed %s in %s - %d records seen, %d emitted, %d skipped\n",
		r.paint(green, "Finished"), humanize.Bytes(uint64(bytesRead)), elapsed, seen, emitted, skipped)
}

func (r *Reporter) paint(color, s string) string {
	if !r.colors {
		return s
	}
	return color + s + reset
}
