package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IndexEntry is one line of a wgrib2-style inventory (".idx" sidecar):
//
//	71:11928132:d=2026021912:TMP:700 mb:anl:
type IndexEntry struct {
	Message  int
	Offset   int64
	Date     string
	Variable string
	Level    string
	Forecast string
	Line     string
	// End is the last byte of the message, or math.MaxInt64 for the last entry.
	End int64
}

// Range returns the byte range of the entry's message.
func (e IndexEntry) Range() Range { return Range{Start: e.Offset, End: e.End} }

// ParseIndex parses an inventory. Lines that do not carry a message number and
// offset are skipped. Entries sharing an offset (submessages) share a range.
func ParseIndex(b []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		parts := strings.Split(line, ":")
		if len(parts) < 3 {
			continue
		}
		// Submessages are numbered "n.m".
		num, err := strconv.Atoi(strings.SplitN(parts[0], ".", 2)[0])
		if err != nil {
			continue
		}
		off, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || off < 0 {
			continue
		}
		e := IndexEntry{
			Message: num,
			Offset:  off,
			Date:    strings.TrimPrefix(parts[2], "d="),
			Line:    line,
			End:     math.MaxInt64,
		}
		if len(parts) > 3 {
			e.Variable = parts[3]
		}
		if len(parts) > 4 {
			e.Level = parts[4]
		}
		if len(parts) > 5 {
			e.Forecast = parts[5]
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// End byte: start of the next message - 1, or end of file.
	// math.MaxInt64 instead of 0 to avoid ambiguity with byte offset 0.
	for i := range entries {
		for k := i + 1; k < len(entries); k++ {
			if entries[k].Offset > entries[i].Offset {
				entries[i].End = entries[k].Offset - 1
				break
			}
		}
	}
	return entries, nil
}

// Match returns the entries whose line contains pattern, one per message.
func Match(entries []IndexEntry, pattern string) []IndexEntry {
	var out []IndexEntry
	seen := make(map[int64]bool)
	for _, e := range entries {
		if !strings.Contains(e.Line, pattern) || seen[e.Offset] {
			continue
		}
		seen[e.Offset] = true
		out = append(out, e)
	}
	return out
}

// LoadMatching reads location+".idx", then loads only the messages whose
// inventory line contains pattern, concatenated in file order.
func (l *Loader) LoadMatching(ctx context.Context, location, pattern string) ([]byte, error) {
	var (
		idx []byte
		err error
	)
	if IsURL(location) {
		idx, err = l.fetch(ctx, location+".idx", nil, DefaultMaxIndexBytes)
	} else {
		idx, err = l.readFile(location + ".idx")
	}
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	entries, err := ParseIndex(idx)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	matched := Match(entries, pattern)
	if len(matched) == 0 {
		return nil, fmt.Errorf("variable %q not found in index", pattern)
	}
	var buf []byte
	for _, e := range matched {
		b, err := l.LoadRange(ctx, location, e.Range())
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", e.Message, err)
		}
		if int64(len(buf)+len(b)) > l.maxBytes {
			return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, l.maxBytes)
		}
		buf = append(buf, b...)
	}
	return buf, nil
}
