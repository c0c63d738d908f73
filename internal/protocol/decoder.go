package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// statusMarker opens every message on the notification stream. There is no
// other delimiter between messages.
var statusMarker = []byte("HTTP/1.1 ")

const (
	headerSeparator = "\r\n\r\n"

	// maxBufferedBytes bounds the retained remainder. A remainder larger
	// than any plausible message means the framing is lost for good, so the
	// decoder drops the buffer and resynchronizes instead of growing
	// without limit.
	maxBufferedBytes = 1 << 20
)

// StreamDecoder incrementally decodes the speaker's notification stream.
// Feed it raw bytes in arbitrary chunks; it emits complete frames and
// retains any unparsed suffix for the next call. The zero value is not
// usable; construct with NewStreamDecoder.
//
// A decoder serves one connection and is not safe for concurrent use.
type StreamDecoder struct {
	buf []byte
}

// NewStreamDecoder returns a decoder with an empty remainder.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{buf: make([]byte, 0, 4096)}
}

// Buffered returns the number of remainder bytes awaiting more input.
func (d *StreamDecoder) Buffered() int {
	return len(d.buf)
}

// Reset discards any retained remainder. Call it after reconnecting so
// bytes from the previous connection cannot leak into the new stream.
func (d *StreamDecoder) Reset() {
	d.buf = d.buf[:0]
}

// Feed appends p to the remainder and decodes every complete message now
// available. Identical frames result from any chunking of the same byte
// stream. Decode failures are returned alongside the frames that did
// decode; each error is a *MalformedFrameError and the decoder has already
// resynchronized past the bad bytes.
func (d *StreamDecoder) Feed(p []byte) ([]*Frame, []error) {
	d.buf = append(d.buf, p...)

	var frames []*Frame
	var errs []error

	for {
		frame, err, ok := d.next()
		if err != nil {
			errs = append(errs, err)
		}
		if frame != nil {
			frames = append(frames, frame)
		}
		if !ok {
			break
		}
	}

	if len(d.buf) > maxBufferedBytes {
		n := len(d.buf)
		d.buf = d.buf[:0]
		errs = append(errs, &MalformedFrameError{
			Reason:    "remainder exceeds maximum message size",
			Discarded: n,
		})
	}

	return frames, errs
}

// next attempts to decode one message from the front of the buffer. The
// third return reports whether decoding should continue; false means more
// input is needed.
func (d *StreamDecoder) next() (*Frame, error, bool) {
	// Align the buffer on a status line. Anything before the marker is
	// garbage from a corrupt or truncated message.
	idx := bytes.Index(d.buf, statusMarker)
	if idx < 0 {
		// Keep a tail that could be a marker prefix split across reads.
		keep := markerPrefixLen(d.buf)
		if dropped := len(d.buf) - keep; dropped > 0 {
			d.buf = append(d.buf[:0], d.buf[len(d.buf)-keep:]...)
			return nil, &MalformedFrameError{
				Reason:    "no status line in input",
				Discarded: dropped,
			}, true
		}
		return nil, nil, false
	}
	if idx > 0 {
		d.buf = append(d.buf[:0], d.buf[idx:]...)
		return nil, &MalformedFrameError{
			Reason:    "garbage before status line",
			Discarded: idx,
		}, true
	}

	headerEnd := bytes.Index(d.buf, []byte(headerSeparator))
	if headerEnd < 0 {
		return nil, nil, false
	}

	header := d.buf[:headerEnd]
	bodyStart := headerEnd + len(headerSeparator)

	status, err := parseStatusLine(header)
	if err != nil {
		d.buf = append(d.buf[:0], d.buf[bodyStart:]...)
		return nil, &MalformedFrameError{
			Reason:    "unparseable status line",
			Discarded: bodyStart,
			Err:       err,
		}, true
	}

	length, ok := contentLength(header)
	if !ok {
		// The body length is unknown, so resync at the next status line.
		d.buf = append(d.buf[:0], d.buf[bodyStart:]...)
		return nil, &MalformedFrameError{
			Reason:    "missing Content-Length header",
			Discarded: bodyStart,
		}, true
	}

	if len(d.buf) < bodyStart+length {
		return nil, nil, false
	}

	body := append([]byte(nil), d.buf[bodyStart:bodyStart+length]...)
	d.buf = append(d.buf[:0], d.buf[bodyStart+length:]...)

	if status != 200 {
		return nil, &MalformedFrameError{
			Reason:    fmt.Sprintf("unexpected status %d", status),
			Discarded: bodyStart + length,
		}, true
	}

	frame, err := ParseFrame(body)
	if err != nil {
		return nil, &MalformedFrameError{
			Reason:    "invalid XML body",
			Discarded: length,
			Err:       err,
		}, true
	}
	return frame, nil, true
}

// markerPrefixLen returns the length of the longest suffix of b that is a
// prefix of the status marker.
func markerPrefixLen(b []byte) int {
	max := len(statusMarker) - 1
	if max > len(b) {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if bytes.Equal(b[len(b)-n:], statusMarker[:n]) {
			return n
		}
	}
	return 0
}

func parseStatusLine(header []byte) (int, error) {
	lineEnd := bytes.Index(header, []byte("\r\n"))
	if lineEnd < 0 {
		lineEnd = len(header)
	}
	line := header[:lineEnd]

	rest := bytes.TrimPrefix(line, statusMarker)
	if len(rest) == len(line) {
		return 0, fmt.Errorf("not a status line: %q", line)
	}
	if sp := bytes.IndexByte(rest, ' '); sp >= 0 {
		rest = rest[:sp]
	}
	code, err := strconv.Atoi(string(rest))
	if err != nil {
		return 0, fmt.Errorf("bad status code in %q", line)
	}
	return code, nil
}

func contentLength(header []byte) (int, bool) {
	for _, line := range bytes.Split(header, []byte("\r\n")) {
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := string(bytes.TrimSpace(line[:colon]))
		if !strings.EqualFold(name, "Content-Length") {
			continue
		}
		value := string(bytes.TrimSpace(line[colon+1:]))
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
