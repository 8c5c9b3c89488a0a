package mqtt

import (
	"context"
	"encoding/json"
	"io"

	"github.com/golang/glog"

	"github.com/ectalks/ecdbg/pkg/comm"
	"github.com/ectalks/ecdbg/pkg/ec/raw"
	fx "github.com/ectalks/ecdbg/pkg/framework"
)

// Registrar announces one EC debug endpoint on the broker and serves
// its raw channel. The endpoint is registered by a retained message on
// "<type>/<id>/meta" and deregistered by the will clearing it.
type Registrar struct {
	Ref  comm.DeviceRef
	Meta comm.DeviceMeta

	bus *Bus
	rw  comm.PacketReadWriter
	svc *comm.Service
}

// NewRegistrar creates a Registrar serving session on the broker at
// brokerURL. The connection is established before returning.
func NewRegistrar(brokerURL string, ref comm.DeviceRef, meta comm.DeviceMeta,
	session *raw.Session) (*Registrar, error) {
	opts, topicPrefix, err := OptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID("ecdbg:" + ref.Name())
	}
	metaPayload, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	metaKey := topicPrefix + ref.Name() + "/" + metaTopic
	opts.SetBinaryWill(metaKey, nil, 1, true)

	r := &Registrar{Ref: ref, Meta: meta}
	bus := NewBus(opts, topicPrefix)
	// Re-announce after every (re)connect so a broker restart does not
	// lose the registration.
	bus.OnConnect = func(b *Bus) {
		b.PubWith(ref.Name()+"/"+metaTopic, metaPayload, 1, true)
	}
	if token := bus.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	r.bus = bus
	r.rw = ForDevice(bus, ref)
	r.svc = comm.NewService(session, r.rw)
	glog.Infof("registered %s", ref.Name())
	return r, nil
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "registrar " + r.Ref.Name()
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	defer r.Close()
	return fx.RunWithContextCloser(ctx, r.rw.(io.Closer), func() error {
		return r.svc.Run(ctx)
	})
}

// Close deregisters the endpoint and disconnects.
func (r *Registrar) Close() error {
	token := r.bus.PubWith(r.Ref.Name()+"/"+metaTopic, nil, 1, true)
	token.Wait()
	return r.bus.Close()
}
