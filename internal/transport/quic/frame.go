package quic

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/zeusync/trackrun/pkg/generic"
)

const headerSize = 8

// DefaultMaxFrame bounds frames when no explicit limit is given.
const DefaultMaxFrame = 1 << 20

var ErrFrameTooLarge = errors.New("frame too large")

var frameBuffers = generic.NewBufferPool(4096, 1<<20)

// WriteFrame writes an 8-byte big-endian length followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := frameBuffers.Get()
	defer frameBuffers.Put(buf)
	buf.B = binary.BigEndian.AppendUint64(buf.B, uint64(len(payload)))
	buf.B = append(buf.B, payload...)
	if _, err := w.Write(buf.B); err != nil {
		return errors.Wrap(err, "failed to write frame")
	}
	return nil
}

// ReadFrame reads one frame written by WriteFrame. Frames longer than max
// (DefaultMaxFrame when max <= 0) are rejected without reading the payload.
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "failed to read frame header")
	}
	n := binary.BigEndian.Uint64(header[:])
	if max <= 0 {
		max = DefaultMaxFrame
	}
	if n > uint64(max) {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "failed to read frame data")
	}
	return payload, nil
}
