package gharchive

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"devquest/internal/platform/logger"
)

// archive lines above this size are treated as malformed
const maxLine = 32 << 20

// Reader decodes one hour file: gzip framed, one JSON event per line.
// It is not safe for concurrent use.
type Reader struct {
	src  io.ReadCloser
	zr   *gzip.Reader
	br   *bufio.Reader
	done error

	lineNo  int
	events  int
	skipped int
	bytes   int64
}

// NewReader wraps src; src is closed on failure and by Close otherwise
func NewReader(src io.ReadCloser) (*Reader, error) {
	zr, err := gzip.NewReader(src)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("gharchive: gzip header: %w", err), src.Close())
	}
	return &Reader{src: src, zr: zr, br: bufio.NewReaderSize(zr, 256<<10)}, nil
}

// Next returns the next decodable event or io.EOF. Lines that are not
// valid JSON are counted in Stats and skipped.
func (rd *Reader) Next() (EventEnvelope, error) {
	for rd.done == nil {
		raw, err := rd.br.ReadBytes('\n')
		if err != nil {
			rd.done = err
			if !errors.Is(err, io.EOF) {
				return EventEnvelope{}, fmt.Errorf("gharchive: line %d: %w", rd.lineNo+1, err)
			}
		}
		rd.lineNo++
		if env, ok := rd.decode(raw); ok {
			return env, nil
		}
	}
	if errors.Is(rd.done, io.EOF) {
		return EventEnvelope{}, io.EOF
	}
	return EventEnvelope{}, rd.done
}

func (rd *Reader) decode(raw []byte) (EventEnvelope, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return EventEnvelope{}, false
	}
	var env EventEnvelope
	if len(raw) > maxLine {
		rd.skipped++
		return env, false
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		rd.skipped++
		logger.Named("gharchive").Debug().Err(err).Int("line", rd.lineNo).Msg("skip malformed line")
		return env, false
	}
	rd.events++
	rd.bytes += int64(len(raw)) + 1
	return env, true
}

// Close releases the gzip stream and the source
func (rd *Reader) Close() error {
	return errors.Join(rd.zr.Close(), rd.src.Close())
}

// Stats reports decoded events, skipped lines and uncompressed bytes so far
func (rd *Reader) Stats() (events, skipped int, bytes int64) {
	return rd.events, rd.skipped, rd.bytes
}
