// Package sim provides a simulated EC device for demos and tests.
package sim

import (
	"context"

	"github.com/ectalks/ecdbg/pkg/ec"
)

// EC info query command and subtypes handled by the simulation.
const (
	cmdECInfo byte = 0x38

	infoVersion   byte = 0
	infoBuildDate byte = 3
)

// Device is an in-process EC, good enough to exercise the raw channel
// end to end without hardware.
type Device struct {
	FirmwareVersion string
	BuildDate       string
}

// NewDevice creates a Device with canned firmware info.
func NewDevice() *Device {
	return &Device{
		FirmwareVersion: "00.01.02",
		BuildDate:       "12/21/18",
	}
}

// Mailbox implements ec.Device.
func (d *Device) Mailbox(_ context.Context, msg *ec.Message) (int, error) {
	resp := msg.Response[:msg.ResponseSize]
	switch {
	case msg.Type == ec.MsgTelemetryLong:
		// Telemetry records fill the whole extended payload.
		resp[0] = msg.Command
		for i := 1; i < len(resp); i++ {
			resp[i] = byte(i)
		}
		return len(resp), nil
	case msg.Type == ec.MsgLegacy && msg.Command == cmdECInfo:
		return d.ecInfo(msg, resp), nil
	default:
		// Anything else echoes its payload after a zero status.
		n := copy(resp[1:], msg.Request)
		resp[0] = 0
		return n + 1, nil
	}
}

// ecInfo renders an info query response the way the hardware does: a
// status byte, the NUL framed info string, then the echoed command
// code and a short fixed tail.
func (d *Device) ecInfo(msg *ec.Message, resp []byte) int {
	sub := infoVersion
	if len(msg.Request) > 1 {
		sub = msg.Request[1]
	}
	info := d.FirmwareVersion
	if sub == infoBuildDate {
		info = d.BuildDate
	}
	n := 1
	resp[0] = 0
	n += copy(resp[n:], info)
	resp[n] = 0
	n++
	n += copy(resp[n:], []byte{msg.Command, 0x00, 0x01, 0x00, 0x2f, 0x00})
	return n
}
