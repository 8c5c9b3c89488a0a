package comm

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/ectalks/ecdbg/pkg/ec/raw"
)

// Service serves one raw debug session to a remote operator. Requests
// are handled strictly one at a time, which keeps the locking-free
// session contract intact.
type Service struct {
	session *raw.Session
	rw      PacketReadWriter
}

// NewService creates a Service binding session to rw.
func NewService(session *raw.Session, rw PacketReadWriter) *Service {
	return &Service{session: session, rw: rw}
}

// Run implements Runnable: it decodes requests, feeds them through the
// session and replies with the rendered dump.
func (s *Service) Run(ctx context.Context) error {
	defer s.Close()
	for {
		pkt, err := s.rw.ReadPacket()
		if err != nil {
			return err
		}
		req, err := DecodeRequest(pkt)
		if err != nil {
			glog.Warningf("bad request packet: %v", err)
			continue
		}
		out, err := s.exec(ctx, req).Encode()
		if err != nil {
			return err
		}
		if err := s.rw.WritePacket(out); err != nil {
			return err
		}
	}
}

// Close implements Closer.
func (s *Service) Close() error {
	if closer, ok := s.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) exec(ctx context.Context, req *Request) *Response {
	res := &Response{Seq: req.Seq}
	if _, err := s.session.Write(ctx, []byte(req.Text)); err != nil {
		res.Err = err.Error()
		return res
	}
	// Drain the rendered dump in chunks; the session serves the text
	// across reads at advancing offsets.
	var dump []byte
	var chunk [256]byte
	var off int64
	for {
		n, err := s.session.ReadAt(chunk[:], off)
		dump = append(dump, chunk[:n]...)
		off += int64(n)
		if err == io.EOF {
			break
		}
	}
	res.Dump = string(dump)
	return res
}
