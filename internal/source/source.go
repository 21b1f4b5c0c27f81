// Package source loads GRIB2 buffers from local files, stdin or HTTP(S), with
// optional byte ranges and transparent decompression.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geal-ai/grib2/internal/options"
)

// Body size limits.
// Index files are a few hundred KB; whole GRIB2 files rarely exceed a few hundred MB.
// These caps prevent OOM if a misbehaving server sends a huge body.
const (
	DefaultMaxIndexBytes = 10 << 20  // 10 MB
	DefaultMaxBytes      = 512 << 20 // 512 MB
)

// ErrTooLarge reports a body or decompressed buffer over the configured limit.
var ErrTooLarge = errors.New("source: input exceeds size limit")

// Stdin is the location that reads standard input.
const Stdin = "-"

// Range is an inclusive byte range; End == math.MaxInt64 means "to EOF".
type Range struct {
	Start, End int64
}

func (r Range) header() string {
	if r.End == math.MaxInt64 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// length is the number of bytes the range covers, math.MaxInt64 when open.
func (r Range) length() int64 {
	if r.End == math.MaxInt64 {
		return math.MaxInt64
	}
	return r.End - r.Start + 1
}

// Loader fetches GRIB2 buffers.
type Loader struct {
	client     *http.Client
	maxBytes   int64
	decompress bool
	stdin      io.Reader
	log        *zap.Logger
}

// Option configures a Loader.
type Option = options.Option[*Loader]

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return options.New(func(l *Loader) error {
		if c == nil {
			return errors.New("source: nil http client")
		}
		l.client = c
		return nil
	})
}

// WithMaxBytes caps the size of a loaded (and decompressed) buffer.
func WithMaxBytes(n int64) Option {
	return options.New(func(l *Loader) error {
		if n <= 0 {
			return fmt.Errorf("source: max bytes must be positive, got %d", n)
		}
		l.maxBytes = n
		return nil
	})
}

// WithDecompression toggles magic-byte decompression (on by default).
func WithDecompression(on bool) Option {
	return options.NoError(func(l *Loader) { l.decompress = on })
}

// WithStdin replaces os.Stdin as the reader behind the "-" location.
func WithStdin(r io.Reader) Option {
	return options.NoError(func(l *Loader) { l.stdin = r })
}

// WithLogger sets the loader's logger.
func WithLogger(log *zap.Logger) Option {
	return options.NoError(func(l *Loader) {
		if log != nil {
			l.log = log
		}
	})
}

// New returns a Loader with sensible defaults.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		client:     &http.Client{Timeout: 120 * time.Second},
		maxBytes:   DefaultMaxBytes,
		decompress: true,
		stdin:      os.Stdin,
		log:        zap.NewNop(),
	}
	if err := options.Apply(l, opts...); err != nil {
		return nil, err
	}
	return l, nil
}

// IsURL reports whether location is fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Load reads the whole location: a path, "-" for stdin, or an http(s) URL.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case location == Stdin:
		raw, err = readLimited(l.stdin, l.maxBytes)
	case IsURL(location):
		raw, err = l.fetch(ctx, location, nil, l.maxBytes)
	default:
		raw, err = l.readFile(location)
	}
	if err != nil {
		return nil, err
	}
	return l.expand(location, raw)
}

// LoadRange fetches one byte range of a URL or file. Ranges of compressed
// containers are not meaningful, so the result is not decompressed.
func (l *Loader) LoadRange(ctx context.Context, location string, r Range) ([]byte, error) {
	if r.Start < 0 || r.End < r.Start {
		return nil, fmt.Errorf("source: invalid range %d-%d", r.Start, r.End)
	}
	if IsURL(location) {
		return l.fetch(ctx, location, &r, l.maxBytes)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(io.NewSectionReader(f, r.Start, r.length()), l.maxBytes)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes)
}

func (l *Loader) expand(location string, raw []byte) ([]byte, error) {
	if !l.decompress {
		return raw, nil
	}
	out, codec, err := Decompress(raw, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if codec != CodecNone {
		l.log.Debug("decompressed input", zap.String("location", location),
			zap.String("codec", string(codec)), zap.Int("in", len(raw)), zap.Int("out", len(out)))
	}
	return out, nil
}

// fetch does an HTTP GET, optionally ranged, and returns the body.
func (l *Loader) fetch(ctx context.Context, url string, r *Range, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if r != nil {
		req.Header.Set("Range", r.header())
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}
	l.log.Debug("fetched", zap.String("url", url), zap.Int("status", resp.StatusCode),
		zap.Int64("content_length", resp.ContentLength))
	if r != nil && resp.StatusCode == http.StatusOK {
		// The server ignored Range and sent the whole object; cut the range out.
		l.log.Debug("range ignored by server", zap.String("url", url), zap.String("range", r.header()))
		if _, err := io.CopyN(io.Discard, resp.Body, r.Start); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("range %s starts past the end of %s", r.header(), url)
			}
			return nil, err
		}
		return readLimited(io.LimitReader(resp.Body, r.length()), limit)
	}
	return readLimited(resp.Body, limit)
}
