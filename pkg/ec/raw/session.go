package raw

import (
	"context"
	"io"

	"github.com/ectalks/ecdbg/pkg/ec"
)

// FormattedBufferSize is the staging text capacity. It must hold the
// rendering of a full extended response; it also bounds a single
// write.
const FormattedBufferSize = (ec.DataSizeExtended / dumpRowSize) * (4*dumpRowSize + 2)

// Session is the state of one raw debug channel. It bridges a write
// of a hex sentence to the reads serving the rendered response.
//
// A Session is a single-operator channel and performs no internal
// locking: concurrent writes and reads race on the shared buffers.
// Callers that expose a Session to more than one party must serialize
// access themselves.
type Session struct {
	dev ec.Device

	// respLen is nonzero only between a successful dispatch and the
	// first read consuming it.
	respLen int
	fmtLen  int
	resp    [ec.DataSizeExtended]byte
	// text stages write input and, after a dispatch, the rendered
	// response. The two uses never overlap in time.
	text [FormattedBufferSize]byte
}

// NewSession creates a Session dispatching to dev. One Session is
// expected per attached EC device, living as long as the device does.
func NewSession(dev ec.Device) *Session {
	return &Session{dev: dev}
}

// Write decodes one hex sentence from p and dispatches the resulting
// message to the EC, buffering the response for the next read. On
// success the full length of p is reported as consumed. On failure
// the session keeps whatever state it had: no partial response is
// ever exposed.
func (s *Session) Write(ctx context.Context, p []byte) (int, error) {
	if len(p) > len(s.text) {
		return 0, ErrOversizedWrite
	}
	staged := s.text[:copy(s.text[:], p)]

	var data [requestSize]byte
	n, err := ParseHexSentence(staged, data[:])
	if err != nil {
		return 0, err
	}
	if n < 3 {
		return 0, ErrInvalidInput
	}

	// A response shorter than the previous one must not leak stale
	// trailing bytes.
	for i := range s.resp {
		s.resp[i] = 0
	}
	s.respLen = 0

	msg, err := Frame(data[:n], s.resp[:])
	if err != nil {
		return 0, err
	}
	rlen, err := s.dev.Mailbox(ctx, msg)
	if err != nil {
		// Device errors pass through untranslated.
		return 0, err
	}
	s.respLen = rlen
	return len(p), nil
}

// ReadAt serves the rendered response text at off. The first read
// after a successful dispatch renders the buffered response and marks
// it consumed; the rendered text stays available for further reads at
// advancing offsets until a read sequence restarts at offset zero.
// Reading with nothing pending serves empty. A negative offset is
// rejected without consuming any pending response.
func (s *Session) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if s.respLen > 0 {
		// One-shot: only the first read after a dispatch renders.
		s.fmtLen = Dump(s.text[:], s.resp[:s.respLen])
		s.respLen = 0
	} else if off == 0 {
		// A fresh read sequence with no unread response is empty,
		// even if older rendered text is still staged.
		s.fmtLen = 0
	}
	if off >= int64(s.fmtLen) {
		return 0, io.EOF
	}
	return copy(p, s.text[off:s.fmtLen]), nil
}
