package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayload caps a frame's declared payload size. The largest legitimate
// frame is a full catalog, which stays well under this; anything bigger is a
// corrupt or hostile length field.
const MaxPayload = 1 << 20

// Frame is one opcoded message on the wire:
//
//	length:uint32 | opcode:uint32 | payload
//
// little-endian, length covering the payload only.
type Frame struct {
	Op      Opcode
	Payload []byte
}

const frameHeaderSize = 8

// WriteFrame writes f to w as a single Write call, so concurrent writers on
// the same connection cannot interleave partial frames.
func WriteFrame(w io.Writer, f Frame) error {
	if len(f.Payload) > MaxPayload {
		return fmt.Errorf("frame payload %d bytes exceeds cap", len(f.Payload))
	}

	buf := make([]byte, frameHeaderSize+len(f.Payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(f.Payload)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(f.Op))
	copy(buf[frameHeaderSize:], f.Payload)

	_, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ReadFrame reads exactly one frame from r. io.ReadFull is required here:
// TCP is free to fragment the stream mid-header or mid-payload.
//
// A declared length over MaxPayload fails with ErrMalformed before any
// allocation happens.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [frameHeaderSize]byte

	_, err := io.ReadFull(r, header[:])
	if err != nil {
		// EOF between frames is a clean disconnect; pass it through
		// untouched so callers can tell it apart from a torn frame.
		if err == io.EOF {
			return Frame{}, io.EOF
		}

		return Frame{}, fmt.Errorf("read frame header: %w", err)
	}

	length := binary.LittleEndian.Uint32(header[0:4])
	op := Opcode(binary.LittleEndian.Uint32(header[4:8]))

	if length > MaxPayload {
		return Frame{}, fmt.Errorf("%w: declared payload %d bytes exceeds cap", ErrMalformed, length)
	}

	payload := make([]byte, length)
	if length > 0 {
		_, err = io.ReadFull(r, payload)
		if err != nil {
			// A header with no payload behind it is a torn frame, not a
			// clean end of stream.
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return Frame{}, fmt.Errorf("read frame payload: %w", err)
		}
	}

	return Frame{Op: op, Payload: payload}, nil
}
