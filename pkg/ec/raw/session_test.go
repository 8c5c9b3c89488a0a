package raw

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ectalks/ecdbg/pkg/ec"
)

// stubDevice records the dispatched message and replies with canned
// response bytes.
type stubDevice struct {
	response []byte
	err      error

	calls       int
	lastMsg     ec.Message
	lastRequest []byte
	dirtyOnCall []bool
}

func (d *stubDevice) Mailbox(_ context.Context, msg *ec.Message) (int, error) {
	d.calls++
	d.lastMsg = *msg
	d.lastRequest = append([]byte(nil), msg.Request...)
	dirty := false
	for _, b := range msg.Response {
		if b != 0 {
			dirty = true
			break
		}
	}
	d.dirtyOnCall = append(d.dirtyOnCall, dirty)
	if d.err != nil {
		return 0, d.err
	}
	return copy(msg.Response[:msg.ResponseSize], d.response), nil
}

func readAll(t *testing.T, s *Session, chunkSize int) string {
	var out bytes.Buffer
	chunk := make([]byte, chunkSize)
	var off int64
	for {
		n, err := s.ReadAt(chunk, off)
		out.Write(chunk[:n])
		off += int64(n)
		if err == io.EOF {
			return out.String()
		}
		require.NoError(t, err)
	}
}

func mustWrite(t *testing.T, s *Session, sentence string) {
	n, err := s.Write(context.Background(), []byte(sentence))
	require.NoError(t, err)
	require.Equal(t, len(sentence), n)
}

func TestSessionRoundTrip(t *testing.T) {
	dev := &stubDevice{response: []byte{
		0x31, 0x32, 0x2f, 0x32, 0x31, 0x2f, 0x31, 0x38,
		0x00, 0x38, 0x00, 0x01, 0x00, 0x2f, 0x00,
	}}
	s := NewSession(dev)

	mustWrite(t, s, "00 f0 38 00 03 00")
	require.Equal(t, 1, dev.calls)
	require.Equal(t, uint16(0x00f0), dev.lastMsg.Type)
	require.Equal(t, byte(0x38), dev.lastMsg.Command)
	require.Equal(t, []byte{0x00, 0x03, 0x00}, dev.lastRequest)
	require.Equal(t, ec.FlagRaw, dev.lastMsg.Flags)
	require.Equal(t, ec.DataSize, dev.lastMsg.ResponseSize)

	dump := readAll(t, s, 64)
	require.Equal(t,
		"31 32 2f 32 31 2f 31 38 00 38 00 01 00 2f 00     12/21/18.8.../.\n",
		dump)

	// The response is consumed by the first read sequence.
	buf := make([]byte, 64)
	n, err := s.ReadAt(buf, 0)
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestSessionChunkedRead(t *testing.T) {
	dev := &stubDevice{response: []byte("hello world! hello")}
	s := NewSession(dev)

	mustWrite(t, s, "00 f0 01")
	whole := readAll(t, s, FormattedBufferSize)

	mustWrite(t, s, "00 f0 01")
	chunked := readAll(t, s, 7)
	require.Equal(t, whole, chunked)
	require.Contains(t, chunked, "hello world! hel\n")
}

func TestSessionReadWithoutWrite(t *testing.T) {
	s := NewSession(&stubDevice{})
	buf := make([]byte, 16)
	n, err := s.ReadAt(buf, 0)
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestSessionOversizedWrite(t *testing.T) {
	dev := &stubDevice{}
	s := NewSession(dev)
	in := []byte(strings.Repeat("0 ", FormattedBufferSize/2+1))
	_, err := s.Write(context.Background(), in)
	require.Equal(t, ErrOversizedWrite, err)
	// Rejected before parsing, so the device is never involved.
	require.Equal(t, 0, dev.calls)
}

func TestSessionInvalidInput(t *testing.T) {
	for _, in := range []string{"zz", "00 f0 38 1gg", "00 f0", ""} {
		dev := &stubDevice{}
		s := NewSession(dev)
		_, err := s.Write(context.Background(), []byte(in))
		require.Equalf(t, ErrInvalidInput, err, "input %q", in)
		require.Equal(t, 0, dev.calls)
	}
}

func TestSessionInvalidWriteKeepsPendingResponse(t *testing.T) {
	dev := &stubDevice{response: []byte{0x42}}
	s := NewSession(dev)

	mustWrite(t, s, "00 f0 01")
	_, err := s.Write(context.Background(), []byte("zz"))
	require.Equal(t, ErrInvalidInput, err)

	// The failed write left the unread response untouched.
	dump := readAll(t, s, 64)
	require.Contains(t, dump, "42")
}

func TestSessionNegativeReadOffset(t *testing.T) {
	dev := &stubDevice{response: []byte{0x42}}
	s := NewSession(dev)
	buf := make([]byte, 16)

	mustWrite(t, s, "00 f0 38")
	readAll(t, s, 64)
	n, err := s.ReadAt(buf, -1)
	require.Equal(t, 0, n)
	require.Equal(t, ErrInvalidOffset, err)

	// A rejected offset must not consume a pending response either.
	mustWrite(t, s, "00 f0 38")
	_, err = s.ReadAt(buf, -1)
	require.Equal(t, ErrInvalidOffset, err)
	require.Contains(t, readAll(t, s, 64), "42")
}

func TestSessionTransportError(t *testing.T) {
	boom := errors.New("mailbox timeout")
	dev := &stubDevice{err: boom}
	s := NewSession(dev)

	_, err := s.Write(context.Background(), []byte("00 f0 38"))
	// Device errors surface verbatim, never wrapped.
	require.Equal(t, boom, err)

	buf := make([]byte, 16)
	n, err := s.ReadAt(buf, 0)
	require.Equal(t, 0, n)
	require.Equal(t, io.EOF, err)
}

func TestSessionClearsResponseBuffer(t *testing.T) {
	dev := &stubDevice{response: bytes.Repeat([]byte{0xff}, ec.DataSize)}
	s := NewSession(dev)

	mustWrite(t, s, "00 f0 01")
	readAll(t, s, 64)

	// Second dispatch with a shorter response: the buffer must have
	// been zeroed in between.
	dev.response = []byte{0x01}
	mustWrite(t, s, "00 f0 02")
	require.Equal(t, []bool{false, false}, dev.dirtyOnCall)

	dump := readAll(t, s, 64)
	require.False(t, strings.Contains(dump, "ff"), "stale bytes leaked: %q", dump)
}

func TestSessionTelemetryExtended(t *testing.T) {
	dev := &stubDevice{response: bytes.Repeat([]byte{0xa5}, ec.DataSizeExtended)}
	s := NewSession(dev)

	mustWrite(t, s, "f0 f1 01")
	require.Equal(t, ec.FlagRaw|ec.FlagExtended, dev.lastMsg.Flags)
	require.Equal(t, ec.DataSizeExtended, dev.lastMsg.ResponseSize)

	dump := readAll(t, s, 512)
	require.Equal(t, DumpLen(ec.DataSizeExtended), len(dump))
}

func TestSessionTruncatesLongSentence(t *testing.T) {
	dev := &stubDevice{}
	s := NewSession(dev)

	// 40 words decode to the staging capacity of 34 bytes: two type
	// bytes, one command byte and a full standard payload.
	mustWrite(t, s, strings.Repeat("11 ", 40))
	require.Equal(t, 1, dev.calls)
	require.Len(t, dev.lastRequest, ec.DataSize-1)
}
