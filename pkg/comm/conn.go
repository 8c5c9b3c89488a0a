package comm

import (
	"container/list"
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// RemoteError carries a device-side failure verbatim.
type RemoteError struct {
	Msg string
}

// Error implements error.
func (e *RemoteError) Error() string { return e.Msg }

// DefaultExpiration is the default time to wait for a dump. Raw EC
// exchanges over a slow serial link can take a while.
const DefaultExpiration = 3 * time.Second

// Conn submits raw commands over a PacketReadWriter and correlates
// responses by sequence number.
type Conn struct {
	Expiration time.Duration

	rw      PacketReadWriter
	seq     uint32
	pending list.List
	seqMap  map[uint32]*future
	lock    sync.Mutex
}

// NewConn creates a Conn over rw.
func NewConn(rw PacketReadWriter) *Conn {
	return &Conn{
		Expiration: DefaultExpiration,
		rw:         rw,
		seqMap:     make(map[uint32]*future),
	}
}

// Do implements Channel.
func (c *Conn) Do(text string) Future {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f := &future{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan Result, 1),
	}
	req := Request{Seq: f.seq, Text: text}
	pkt, err := req.Encode()
	if err == nil {
		err = c.rw.WritePacket(pkt)
	}
	if err != nil {
		f.result <- Result{Err: err}
		return f
	}
	f.elem = c.pending.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Run implements Channel: it receives responses until the transport
// reports an error or the context is canceled.
func (c *Conn) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go c.purgeLoop(ctx, stop)
	for {
		pkt, err := c.rw.ReadPacket()
		if err != nil {
			return err
		}
		res, err := DecodeResponse(pkt)
		if err != nil {
			glog.Warningf("bad response packet: %v", err)
			continue
		}
		c.settle(res)
	}
}

// Close implements Channel.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Conn) settle(res *Response) {
	c.lock.Lock()
	f := c.seqMap[res.Seq]
	if f != nil {
		c.pending.Remove(f.elem)
		delete(c.seqMap, res.Seq)
	}
	c.lock.Unlock()
	if f == nil {
		return
	}
	r := Result{Dump: res.Dump}
	if res.Err != "" {
		r.Err = &RemoteError{Msg: res.Err}
	}
	f.result <- r
	close(f.result)
}

func (c *Conn) purgeLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			c.purgeExpired(time.Now())
		}
	}
}

func (c *Conn) purgeExpired(now time.Time) {
	var expired []*future
	c.lock.Lock()
	for c.pending.Len() > 0 {
		elem := c.pending.Front()
		f := elem.Value.(*future)
		if f.expireAt.After(now) {
			break
		}
		c.pending.Remove(elem)
		delete(c.seqMap, f.seq)
		expired = append(expired, f)
	}
	c.lock.Unlock()
	for _, f := range expired {
		f.result <- Result{Err: context.DeadlineExceeded}
		close(f.result)
	}
}

type future struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan Result
}

func (f *future) ResultChan() <-chan Result {
	return f.result
}
