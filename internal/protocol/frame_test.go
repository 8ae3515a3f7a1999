package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	frames := []Frame{
		{Op: OpRequestItems, Payload: EncodeText("")},
		{Op: OpBuyItem, Payload: EncodePurchase(PurchaseRequest{TabIndex: 1, ItemIndex: 2})},
		{Op: OpGetPoints, Payload: EncodePoints(150)},
		{Op: OpError, Payload: EncodeText("Store Item Not Found")},
	}

	var stream bytes.Buffer
	for _, f := range frames {
		require.NoError(t, WriteFrame(&stream, f))
	}

	for _, want := range frames {
		got, err := ReadFrame(&stream)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// Stream fully drained: the next read is a clean EOF.
	_, err := ReadFrame(&stream)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadFrameTornStream(t *testing.T) {
	t.Parallel()

	var stream bytes.Buffer
	require.NoError(t, WriteFrame(&stream, Frame{Op: OpGetPoints, Payload: EncodePoints(50)}))

	full := stream.Bytes()

	// A partial header or partial payload is a torn frame, not a clean EOF.
	for cut := 1; cut < len(full); cut++ {
		_, err := ReadFrame(bytes.NewReader(full[:cut]))
		require.Error(t, err, "cut at %d bytes", cut)
		require.NotErrorIs(t, err, io.EOF, "cut at %d bytes", cut)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	t.Parallel()

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], MaxPayload+1)
	binary.LittleEndian.PutUint32(header[4:8], uint32(OpBuyItem))

	_, err := ReadFrame(bytes.NewReader(header[:]))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	t.Parallel()

	err := WriteFrame(io.Discard, Frame{Op: OpReceiveItems, Payload: make([]byte, MaxPayload+1)})
	require.Error(t, err)
}
