package ec

import "context"

// Mailbox payload sizes, fixed by the EC interface.
const (
	// DataSize is the standard mailbox payload size.
	DataSize = 32
	// DataSizeExtended is the mailbox payload size for extended
	// telemetry data.
	DataSizeExtended = 256
)

// Known message types. The raw channel does not interpret these beyond
// the response sizing policy; they are listed for operator reference.
const (
	// MsgLegacy executes a legacy EC command.
	MsgLegacy uint16 = 0x00f0
	// MsgProperty reads or writes an NVRAM property.
	MsgProperty uint16 = 0x00f2
	// MsgTelemetryLong requests telemetry with extended response data.
	MsgTelemetryLong uint16 = 0xf0f1
)

// Flag is a set of message dispatch flags.
type Flag byte

const (
	// FlagRaw sends the request bytes to the EC unmodified, without
	// any higher-level command translation.
	FlagRaw Flag = 1 << iota
	// FlagExtended uses the extended response data size.
	FlagExtended
)

// Message is a single request/response exchange with the EC.
type Message struct {
	Type    uint16
	Flags   Flag
	Command byte
	Request []byte

	// Response receives the response payload. At most ResponseSize
	// bytes are written into it.
	Response     []byte
	ResponseSize int
}

// Device dispatches messages to the EC.
type Device interface {
	// Mailbox performs one blocking exchange and returns the number
	// of response bytes written into msg.Response.
	Mailbox(ctx context.Context, msg *Message) (int, error)
}
