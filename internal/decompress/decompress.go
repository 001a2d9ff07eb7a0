// Package decompress constructs the decompressing reader a dump is read
// through.  The codec is identified by the stream's magic bytes, so the
// caller never has to declare it; unrecognized input is passed through
// unchanged, which covers already-decompressed dumps.
package decompress

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the compression codec of a dump.
type Format int

const (
	Plain Format = iota
	Bzip2
	Gzip
	Zstd
	LZ4
)

func (f Format) String() string {
	switch f {
	case Bzip2:
		return "bzip2"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "plain"
	}
}

var magics = []struct {
	format Format
	magic  []byte
}{
	{Bzip2, []byte("BZh")},
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// Sniff identifies the codec from the first bytes of a stream.  Four bytes
// are enough to tell all supported codecs apart.
func Sniff(header []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(header, m.magic) {
			return m.format
		}
	}
	return Plain
}

// NewReader wraps r in the decoder matching the stream's magic bytes.
// Multistream bzip2 dumps (as produced by pbzip2, which Wikidata uses) are
// decoded across stream boundaries.
func NewReader(r io.Reader) (io.ReadCloser, Format, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, Plain, err
	}
	format := Sniff(header)
	switch format {
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(br)), format, nil
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, err
		}
		return zr, format, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, format, err
		}
		return zr.IOReadCloser(), format, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(br)), format, nil
	default:
		return io.NopCloser(br), format, nil
	}
}
