package mqtt

import (
	"io"
	"sync"

	"github.com/ectalks/ecdbg/pkg/comm"
)

// topic suffixes of a raw channel, relative to "<type>/<id>/".
const (
	metaTopic   = "meta"
	rawCmdTopic = "raw/cmd"
	rawResTopic = "raw/res"
)

// busRW adapts a pair of Bus topics to a PacketReadWriter.
type busRW struct {
	bus       *Bus
	sendTopic string
	sub       *Subscription

	recvCh    chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

// ForOperator creates the operator end of a raw channel: commands go
// out, dumps come back.
func ForOperator(bus *Bus, ref comm.DeviceRef) comm.PacketReadWriter {
	return newBusRW(bus, ref.Name()+"/"+rawCmdTopic, ref.Name()+"/"+rawResTopic)
}

// ForDevice creates the device end of a raw channel.
func ForDevice(bus *Bus, ref comm.DeviceRef) comm.PacketReadWriter {
	return newBusRW(bus, ref.Name()+"/"+rawResTopic, ref.Name()+"/"+rawCmdTopic)
}

func newBusRW(bus *Bus, sendTopic, recvTopic string) *busRW {
	rw := &busRW{
		bus:       bus,
		sendTopic: sendTopic,
		recvCh:    make(chan []byte, 16),
		closed:    make(chan struct{}),
	}
	rw.sub = bus.Sub(recvTopic, rw.onPacket)
	return rw
}

func (rw *busRW) onPacket(topic string, payload []byte) {
	pkt := make([]byte, len(payload))
	copy(pkt, payload)
	select {
	case rw.recvCh <- pkt:
	case <-rw.closed:
	}
}

// ReadPacket implements PacketReader.
func (rw *busRW) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-rw.recvCh:
		return pkt, nil
	case <-rw.closed:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (rw *busRW) WritePacket(pkt []byte) error {
	token := rw.bus.Pub(rw.sendTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (rw *busRW) Close() error {
	var err error
	rw.closeOnce.Do(func() {
		err = rw.sub.Close()
		close(rw.closed)
	})
	return err
}
