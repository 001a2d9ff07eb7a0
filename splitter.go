package dumpstream

import "bytes"

// Framing of a dump.  The array opens with "[\n", records are separated by
// ",\n" and the last record is followed by "\n]".  All three are sequences
// of single-byte characters.
var (
	openMarker  = []byte("[\n")
	delimiter   = []byte(",\n")
	closeMarker = []byte("\n]")
)

// splitRecords splits buf on the record delimiter.  Every piece before a
// delimiter is a complete record.  The remainder after the last delimiter is
// provisional: it is either an incomplete record waiting for more input, or
// the dump's final record still carrying the close marker (see
// terminalRecord).  The returned slices alias buf.
func splitRecords(buf []byte) (records [][]byte, tail []byte) {
	for {
		i := bytes.Index(buf, delimiter)
		if i < 0 {
			return records, buf
		}
		records = append(records, buf[:i])
		buf = buf[i+len(delimiter):]
	}
}

// terminalRecord reports whether tail is the dump's final record, which is
// recognizable because it ends with the close marker instead of the ordinary
// delimiter.  The returned record has the marker stripped.
//
// This assumes the dump format puts no whitespace between the last record
// and the closing bracket, which holds for Wikidata dumps.
func terminalRecord(tail []byte) ([]byte, bool) {
	if !bytes.HasSuffix(tail, closeMarker) {
		return nil, false
	}
	return tail[:len(tail)-len(closeMarker)], true
}
