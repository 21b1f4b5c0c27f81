package grib2

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/geal-ai/grib2/internal/options"
)

var (
	startMarker = []byte("GRIB")
	endMarker   = []byte("7777")
)

// SectionInfo describes one framed section, for tracing a walk.
type SectionInfo struct {
	Offset int // byte offset of the section in the buffer
	Number int // 0..8
	Length int
}

type scanConfig struct {
	logger         *zap.Logger
	messageBitmaps bool
	trace          func(SectionInfo)
}

// ScanOption configures a Scanner.
type ScanOption = options.Option[*scanConfig]

// WithLogger sets the logger of one scanner, overriding the package logger.
func WithLogger(l *zap.Logger) ScanOption {
	return options.New(func(c *scanConfig) error {
		if l == nil {
			return errors.New("grib2: nil logger")
		}
		c.logger = l
		return nil
	})
}

// WithMessageScopedBitmaps drops the captured bitmap at the start of every
// message, so indicator 254 only reuses a bitmap of the same message. By default
// a captured bitmap persists across messages until a new one arrives.
func WithMessageScopedBitmaps() ScanOption {
	return options.NoError(func(c *scanConfig) { c.messageBitmaps = true })
}

// WithTrace calls fn for every section framed, including 0 and 8.
func WithTrace(fn func(SectionInfo)) ScanOption {
	return options.NoError(func(c *scanConfig) { c.trace = fn })
}

// Scanner walks a buffer of concatenated GRIB2 messages and yields a SectionSet
// for every section 7. Successive calls to Scan step through the sets; the
// scanner is not safe for concurrent use, the SectionSets it yields are.
type Scanner struct {
	buf       []byte
	off       int
	inMessage bool
	done      bool
	err       error

	acc SectionSet // most recent instance of each section
	set SectionSet // last emitted snapshot

	cfg scanConfig
	log *zap.Logger
}

// NewScanner returns a Scanner over buf. buf is never modified or copied; the
// SectionSets alias it.
func NewScanner(buf []byte, opts ...ScanOption) *Scanner {
	s := &Scanner{buf: buf, cfg: scanConfig{logger: Logger()}}
	if err := options.Apply(&s.cfg, opts...); err != nil {
		s.err, s.done = err, true
	}
	s.log = s.cfg.logger
	return s
}

// Scan advances to the next SectionSet. It returns false at the end of the
// buffer or on a framing error; Err tells them apart.
func (s *Scanner) Scan() bool {
	for !s.done {
		emitted, err := s.step()
		if err != nil {
			s.err, s.done = err, true
			s.log.Warn("grib2: walk stopped", zap.Int("offset", s.off), zap.Error(err))
			return false
		}
		if emitted {
			return true
		}
	}
	return false
}

// SectionSet returns the set produced by the last successful Scan.
func (s *Scanner) SectionSet() SectionSet { return s.set }

// Err returns the error that stopped the walk, if any.
func (s *Scanner) Err() error { return s.err }

// Offset returns the position of the next unread byte.
func (s *Scanner) Offset() int { return s.off }

func (s *Scanner) traceSection(off, num, length int) {
	if s.cfg.trace != nil {
		s.cfg.trace(SectionInfo{Offset: off, Number: num, Length: length})
	}
}

// step consumes one section (or one resync) and reports whether it emitted.
func (s *Scanner) step() (bool, error) {
	if !s.inMessage {
		return false, s.startMessage()
	}

	rest := s.buf[s.off:]
	switch {
	case bytes.HasPrefix(rest, endMarker):
		s.traceSection(s.off, 8, endMarkerLength)
		s.off += endMarkerLength
		s.inMessage = false
		return false, nil
	case bytes.HasPrefix(rest, startMarker):
		s.log.Warn("grib2: message ended without 7777", zap.Int("offset", s.off))
		s.inMessage = false
		return false, nil
	case len(rest) == 0:
		s.log.Warn("grib2: buffer ended inside a message", zap.Int("offset", s.off))
		s.done = true
		return false, nil
	case len(rest) < headerLength:
		return false, sectionErr(0, ErrMalformed, "truncated section header at offset %d", s.off)
	}

	length := int64(u32(rest[0:4]))
	num := int(rest[4])
	// Compare in int64 so a huge length cannot wrap.
	if length < headerLength || length > int64(len(rest)) {
		return false, sectionErr(num, ErrMalformed, "declared length %d at offset %d, %d bytes remain",
			length, s.off, len(rest))
	}
	sec := rest[:length]
	s.traceSection(s.off, num, int(length))
	s.off += int(length)

	var err error
	switch num {
	case 1:
		s.acc.Identification, err = newSection1(sec)
	case 2:
		s.acc.LocalUse, err = newSection2(sec)
	case 3:
		s.acc.Grid, err = newSection3(sec)
	case 4:
		s.acc.Product, err = newSection4(sec)
	case 5:
		s.acc.Representation, err = newSection5(sec)
	case 6:
		var bm Section6
		bm, err = newSection6(sec)
		if err == nil && bm.Indicator() == BitmapReuse {
			s.log.Debug("grib2: reusing bitmap", zap.Int("offset", s.off-int(length)),
				zap.Bool("captured", s.acc.Bitmap.Present()))
			return false, nil
		}
		s.acc.Bitmap = bm
	case 7:
		s.acc.Data, err = newSection7(sec, s.acc.Representation)
		s.acc.faults[7] = err
		if err != nil {
			s.log.Warn("grib2: damaged section", zap.Int("section", num), zap.Error(err))
		}
		s.set = s.acc
		s.log.Debug("grib2: section set", zap.Int("offset", s.off))
		return true, nil
	default:
		return false, sectionErr(num, ErrMalformed, "unknown section number at offset %d", s.off-int(length))
	}
	s.acc.faults[num] = err
	if err != nil {
		s.log.Warn("grib2: damaged section", zap.Int("section", num), zap.Error(err))
	}
	return false, nil
}

// startMessage resyncs to the next "GRIB" and frames section 0.
func (s *Scanner) startMessage() error {
	i := bytes.Index(s.buf[s.off:], startMarker)
	if i < 0 {
		if n := len(s.buf) - s.off; n > 0 {
			s.log.Warn("grib2: trailing bytes after last message", zap.Int("offset", s.off), zap.Int("bytes", n))
		}
		s.off = len(s.buf)
		s.done = true
		return nil
	}
	if i > 0 {
		s.log.Warn("grib2: skipping bytes between messages", zap.Int("offset", s.off), zap.Int("bytes", i))
		s.off += i
	}
	if len(s.buf)-s.off < indicatorLength {
		return sectionErr(0, ErrMalformed, "truncated indicator section at offset %d", s.off)
	}
	sec0, err := newSection0(s.buf[s.off : s.off+indicatorLength])
	if err != nil {
		return err
	}
	// Edition 1 messages have a different layout after the magic.
	if ed := sec0.Edition(); ed == 1 {
		s.log.Warn("grib2: skipping message", zap.Int("offset", s.off), zap.Uint8("edition", ed))
		s.off += len(startMarker)
		return nil
	}
	s.traceSection(s.off, 0, indicatorLength)
	s.log.Debug("grib2: message", zap.Int("offset", s.off), zap.Uint64("length", sec0.TotalLength()))
	s.acc.Indicator = sec0
	s.acc.faults[0] = nil
	if s.cfg.messageBitmaps {
		s.acc.Bitmap, s.acc.faults[6] = Section6{}, nil
	}
	s.off += indicatorLength
	s.inMessage = true
	return nil
}

// Parse frames every SectionSet in buf. On a framing error it returns the sets
// emitted before the damage together with the error.
func Parse(buf []byte, opts ...ScanOption) ([]SectionSet, error) {
	var sets []SectionSet
	sc := NewScanner(buf, opts...)
	for sc.Scan() {
		sets = append(sets, sc.SectionSet())
	}
	return sets, sc.Err()
}

// Walk calls fn for every SectionSet in buf. ctx is checked between emissions;
// decoding inside fn is not interrupted.
func Walk(ctx context.Context, buf []byte, fn func(SectionSet) error, opts ...ScanOption) error {
	sc := NewScanner(buf, opts...)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if err := fn(sc.SectionSet()); err != nil {
			return err
		}
	}
}
