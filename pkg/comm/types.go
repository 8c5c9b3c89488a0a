package comm

import "context"

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// DeviceRef is a reference to a registered EC debug endpoint.
type DeviceRef struct {
	// Type is the EC family, e.g. "wilco".
	Type string
	// ID uniquely identifies the host machine.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides metadata for a debug endpoint.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides information of a debug endpoint.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}

// Result is the outcome of one raw command.
type Result struct {
	// Dump is the rendered hex dump of the EC response.
	Dump string
	Err  error
}

// Future is the pending result of a submitted command.
type Future interface {
	ResultChan() <-chan Result
}

// Channel is an operator's connection to a remote raw channel.
type Channel interface {
	// Do submits one hex sentence and returns a future for the dump.
	Do(text string) Future
	// Run pumps the channel until the context is canceled.
	Run(context.Context) error
	// Close releases the connection.
	Close() error
}

// Connector discovers and connects debug endpoints.
type Connector interface {
	// Discover enumerates registered endpoints.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified endpoint.
	Connect(context.Context, DeviceRef) (Channel, error)
}
