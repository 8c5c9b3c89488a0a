package raw

import "github.com/ectalks/ecdbg/pkg/ec"

// requestSize is the request staging capacity: two message type bytes
// ride in front of a standard mailbox payload.
const requestSize = ec.DataSize + 2

// Frame builds a raw EC message from parsed sentence bytes. The first
// two bytes select the message type (big-endian), the third the
// command code, the rest the request payload. resp becomes the
// response destination; extended telemetry messages use the extended
// response size.
func Frame(data, resp []byte) (*ec.Message, error) {
	// Two bytes of message type plus one command byte at least.
	if len(data) < 3 {
		return nil, ErrInvalidInput
	}
	msg := &ec.Message{
		Type:         uint16(data[0])<<8 | uint16(data[1]),
		Flags:        ec.FlagRaw,
		Command:      data[2],
		Request:      data[3:],
		Response:     resp,
		ResponseSize: ec.DataSize,
	}
	if msg.Type == ec.MsgTelemetryLong {
		msg.Flags |= ec.FlagExtended
		msg.ResponseSize = ec.DataSizeExtended
	}
	return msg, nil
}
