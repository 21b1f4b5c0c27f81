package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names a container format recognised by its magic bytes.
type Codec string

const (
	CodecNone Codec = "none"
	CodecGzip Codec = "gzip"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
	CodecS2   Codec = "s2"
)

var magics = []struct {
	codec Codec
	magic []byte
}{
	{CodecGzip, []byte{0x1f, 0x8b}},
	{CodecZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{CodecLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	// Snappy framing stream identifier; S2 streams use the same chunk type.
	{CodecS2, []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}},
	{CodecS2, []byte{0xff, 0x06, 0x00, 0x00, 'S', '2', 's', 'T', 'w', 'O'}},
}

// Detect returns the codec whose magic prefixes b.
func Detect(b []byte) Codec {
	for _, m := range magics {
		if bytes.HasPrefix(b, m.magic) {
			return m.codec
		}
	}
	return CodecNone
}

// Decompress expands b according to its magic bytes; input with no known magic
// is returned unchanged. The output may not exceed limit bytes.
func Decompress(b []byte, limit int64) ([]byte, Codec, error) {
	codec := Detect(b)
	var r io.Reader
	switch codec {
	case CodecNone:
		return b, codec, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, codec, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	case CodecZstd:
		zr, err := zstd.NewReader(bytes.NewReader(b), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, codec, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		r = zr
	case CodecLZ4:
		r = lz4.NewReader(bytes.NewReader(b))
	case CodecS2:
		r = s2.NewReader(bytes.NewReader(b))
	}
	out, err := readLimited(r, limit)
	if err != nil {
		return nil, codec, fmt.Errorf("%s: %w", codec, err)
	}
	return out, codec, nil
}

// readLimited reads r to EOF, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return out, nil
}
