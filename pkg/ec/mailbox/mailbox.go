// Package mailbox drives the EC mailbox over a serial port.
package mailbox

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ectalks/ecdbg/pkg/ec"
	fx "github.com/ectalks/ecdbg/pkg/framework"
)

// Wire framing:
//
//	request:  SOF type[2] flags command len payload... check
//	response: SOF status len[2] payload... check
//
// check makes the byte sum of the whole frame zero. A nonzero status
// reports an EC-side error and carries no payload interpretation here.
const sof = 0xec

const respHeadSize = 4

// DefaultBaud is the line rate of the EC debug UART.
const DefaultBaud = 115200

// Config holds serial mailbox configuration.
type Config struct {
	// Device is the serial port path, e.g. /dev/ttyS4.
	Device string
	Baud   int
	// Timeout bounds a single read from the port. Zero blocks.
	Timeout time.Duration
}

// Open opens the serial port and wraps it in a Mailbox.
func (c *Config) Open() (*Mailbox, error) {
	baud := c.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(c.Device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if c.Timeout > 0 {
		if err := port.SetReadTimeout(c.Timeout); err != nil {
			port.Close()
			return nil, err
		}
	}
	return New(port), nil
}

// Mailbox implements ec.Device over a byte stream.
type Mailbox struct {
	port io.ReadWriteCloser
	lock sync.Mutex
}

// New wraps an opened stream. Useful with transports other than a
// local serial port, and for tests.
func New(rw io.ReadWriteCloser) *Mailbox {
	return &Mailbox{port: rw}
}

// Close closes the underlying port.
func (m *Mailbox) Close() error {
	return m.port.Close()
}

// Mailbox implements ec.Device. Exchanges are serialized. Canceling
// the context closes the port to unblock the exchange; the Mailbox is
// unusable afterwards.
func (m *Mailbox) Mailbox(ctx context.Context, msg *ec.Message) (n int, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	err = fx.RunWithContextCloser(ctx, m.port, func() error {
		var e error
		n, e = m.exchange(msg)
		return e
	})
	return
}

func (m *Mailbox) exchange(msg *ec.Message) (int, error) {
	req := make([]byte, 0, len(msg.Request)+7)
	req = append(req, sof,
		byte(msg.Type>>8), byte(msg.Type),
		byte(msg.Flags), msg.Command, byte(len(msg.Request)))
	req = append(req, msg.Request...)
	req = append(req, check(req))
	if _, err := m.port.Write(req); err != nil {
		return 0, err
	}

	var head [respHeadSize]byte
	if _, err := io.ReadFull(m.port, head[:]); err != nil {
		return 0, err
	}
	if head[0] != sof {
		return 0, ErrBadFrame
	}
	size := int(binary.BigEndian.Uint16(head[2:]))
	if size > msg.ResponseSize {
		// The EC must not overrun the negotiated response size.
		return 0, ErrBadFrame
	}
	body := make([]byte, size+1)
	if _, err := io.ReadFull(m.port, body); err != nil {
		return 0, err
	}
	if sum(head[:])+sum(body) != 0 {
		return 0, ErrBadFrame
	}
	if head[1] != 0 {
		return 0, &StatusError{Code: head[1]}
	}
	return copy(msg.Response, body[:size]), nil
}

func sum(p []byte) byte {
	var s byte
	for _, b := range p {
		s += b
	}
	return s
}

func check(p []byte) byte {
	return -sum(p)
}
