package dumpstream

import "unicode/utf8"

// A reassembly buffer holds the decoded text not yet resolved into complete
// records, across chunk reads.  Because a chunk boundary can fall in the
// middle of a multi-byte UTF-8 character, any trailing bytes of an
// incomplete character are held back and prepended to the next chunk before
// validation, so pending never contains partially decoded text.
type reassembly struct {
	pending []byte
	partial []byte
}

// appendChunk validates a newly read chunk and adds it to the pending text.
// It returns a DecodeError if the bytes are not valid UTF-8.  The chunk
// slice is not retained.
func (r *reassembly) appendChunk(chunk []byte) error {
	if len(r.partial) > 0 {
		joined := make([]byte, 0, len(r.partial)+len(chunk))
		joined = append(joined, r.partial...)
		joined = append(joined, chunk...)
		chunk = joined
		r.partial = nil
	}
	hold := trailingPartialRune(chunk)
	complete := chunk[:len(chunk)-hold]
	if !utf8.Valid(complete) {
		return &DecodeError{Msg: "input is not valid UTF-8"}
	}
	r.pending = append(r.pending, complete...)
	if hold > 0 {
		r.partial = append([]byte(nil), chunk[len(chunk)-hold:]...)
	}
	return nil
}

// reset replaces the pending text with the unresolved tail of a splitting
// pass.  The tail may alias pending.
func (r *reassembly) reset(tail []byte) {
	r.pending = append(r.pending[:0], tail...)
}

// trailingPartialRune returns the number of bytes at the end of p that are
// the start of an incomplete UTF-8 encoded character.  It returns 0 when p
// ends on a character boundary, or when the trailing bytes cannot be the
// start of a valid character at all (in which case validation will reject
// them).
func trailingPartialRune(p []byte) int {
	for i := 1; i <= utf8.UTFMax && i <= len(p); i++ {
		b := p[len(p)-i]
		if b < 0x80 {
			// ASCII, so p ends on a character boundary.
			return 0
		}
		if b >= 0xC0 {
			// b starts a multi-byte character.
			var n int
			switch {
			case b >= 0xF0:
				n = 4
			case b >= 0xE0:
				n = 3
			default:
				n = 2
			}
			if n > i {
				return i
			}
			return 0
		}
		// b is a continuation byte, keep scanning backwards.
	}
	return 0
}
