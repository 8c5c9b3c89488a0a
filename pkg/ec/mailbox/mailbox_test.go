package mailbox

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ectalks/ecdbg/pkg/ec"
)

type fakePort struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

// respFrame builds a response frame with a valid check byte.
func respFrame(status byte, data []byte) []byte {
	f := []byte{sof, status, byte(len(data) >> 8), byte(len(data))}
	f = append(f, data...)
	return append(f, check(f))
}

func newTestMsg() *ec.Message {
	return &ec.Message{
		Type:         0x00f0,
		Flags:        ec.FlagRaw,
		Command:      0x38,
		Request:      []byte{0x00, 0x03, 0x00},
		Response:     make([]byte, ec.DataSizeExtended),
		ResponseSize: ec.DataSize,
	}
}

func TestMailboxRequestFraming(t *testing.T) {
	port := &fakePort{}
	port.in.Write(respFrame(0, nil))
	m := New(port)

	n, err := m.Mailbox(context.Background(), newTestMsg())
	require.NoError(t, err)
	require.Equal(t, 0, n)

	expect := []byte{sof, 0x00, 0xf0, 0x01, 0x38, 0x03, 0x00, 0x03, 0x00}
	expect = append(expect, check(expect))
	require.Equal(t, expect, port.out.Bytes())
	require.Equal(t, byte(0), sum(port.out.Bytes()))
}

func TestMailboxResponse(t *testing.T) {
	port := &fakePort{}
	port.in.Write(respFrame(0, []byte{0xde, 0xad, 0xbe, 0xef}))
	m := New(port)

	msg := newTestMsg()
	n, err := m.Mailbox(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, msg.Response[:n])
}

func TestMailboxStatusError(t *testing.T) {
	port := &fakePort{}
	port.in.Write(respFrame(0x5a, nil))
	m := New(port)

	_, err := m.Mailbox(context.Background(), newTestMsg())
	require.Equal(t, &StatusError{Code: 0x5a}, err)
	require.Equal(t, "EC status 0x5a", err.Error())
}

func TestMailboxBadFrame(t *testing.T) {
	testCases := []struct {
		name string
		resp []byte
	}{
		{"bad sof", []byte{0x00, 0x00, 0x00, 0x00, 0x00}},
		{"bad check", []byte{sof, 0x00, 0x00, 0x01, 0x42, 0x00}},
		{
			// Standard-size exchange must reject an extended-size
			// response.
			"oversized",
			[]byte{sof, 0x00, 0x01, 0x00},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			port := &fakePort{}
			port.in.Write(tc.resp)
			m := New(port)
			_, err := m.Mailbox(context.Background(), newTestMsg())
			require.Equal(t, ErrBadFrame, err)
		})
	}
}

// blockingPort never produces a response until closed.
type blockingPort struct {
	closed chan struct{}
}

func (p *blockingPort) Read(b []byte) (int, error)  { <-p.closed; return 0, io.EOF }
func (p *blockingPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *blockingPort) Close() error                { close(p.closed); return nil }

func TestMailboxCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	port := &blockingPort{closed: make(chan struct{})}
	m := New(port)

	_, err := m.Mailbox(ctx, newTestMsg())
	require.Equal(t, context.Canceled, err)
	select {
	case <-port.closed:
	default:
		t.Fatal("port left open")
	}
}
