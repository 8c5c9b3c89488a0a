package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/ectalks/ecdbg/pkg/comm"
)

// DefaultDiscoverWindow is how long Discover collects retained meta
// messages from the broker.
const DefaultDiscoverWindow = time.Second

// ErrInvalidRef indicates an incomplete device reference.
var ErrInvalidRef = errors.New("invalid device reference")

// Connector connects raw channels over an MQTT broker.
type Connector struct {
	DiscoverWindow time.Duration

	bus *Bus
}

// NewConnector creates a Connector and connects to the broker at
// registryURL.
func NewConnector(registryURL string) (*Connector, error) {
	bus, err := NewBusFromURL(registryURL)
	if err != nil {
		return nil, err
	}
	if token := bus.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Connector{DiscoverWindow: DefaultDiscoverWindow, bus: bus}, nil
}

// Discover implements Connector: it collects the retained meta of all
// registered endpoints.
func (c *Connector) Discover(ctx context.Context) ([]comm.DeviceInfo, error) {
	var lock sync.Mutex
	found := make(map[comm.DeviceRef]comm.DeviceMeta)
	sub := c.bus.Sub("+/+/"+metaTopic, func(topic string, payload []byte) {
		// A cleared retained message marks a deregistered endpoint.
		if len(payload) == 0 {
			return
		}
		tokens := strings.Split(topic, "/")
		ref := comm.DeviceRef{Type: tokens[0], ID: tokens[1]}
		var meta comm.DeviceMeta
		if err := json.Unmarshal(payload, &meta); err != nil {
			glog.Warningf("bad meta from %q: %v", topic, err)
			return
		}
		lock.Lock()
		found[ref] = meta
		lock.Unlock()
	})
	defer sub.Close()
	if sub.Token.Wait() && sub.Token.Error() != nil {
		return nil, sub.Token.Error()
	}

	select {
	case <-time.After(c.DiscoverWindow):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	lock.Lock()
	defer lock.Unlock()
	infos := make([]comm.DeviceInfo, 0, len(found))
	for ref, meta := range found {
		infos = append(infos, comm.DeviceInfo{Ref: ref, Meta: meta})
	}
	return infos, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref comm.DeviceRef) (comm.Channel, error) {
	if !ref.IsValid() {
		return nil, ErrInvalidRef
	}
	return comm.NewConn(ForOperator(c.bus, ref)), nil
}

// Close disconnects from the broker.
func (c *Connector) Close() error {
	return c.bus.Close()
}
