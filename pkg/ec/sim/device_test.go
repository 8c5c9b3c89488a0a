package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ectalks/ecdbg/pkg/ec"
)

func dispatch(t *testing.T, msg *ec.Message) []byte {
	msg.Response = make([]byte, ec.DataSizeExtended)
	if msg.ResponseSize == 0 {
		msg.ResponseSize = ec.DataSize
	}
	n, err := NewDevice().Mailbox(context.Background(), msg)
	require.NoError(t, err)
	return msg.Response[:n]
}

func TestDeviceBuildDate(t *testing.T) {
	resp := dispatch(t, &ec.Message{
		Type:    ec.MsgLegacy,
		Flags:   ec.FlagRaw,
		Command: cmdECInfo,
		Request: []byte{0x00, 0x03, 0x00},
	})
	require.Equal(t, byte(0), resp[0])
	require.Equal(t, "12/21/18", string(resp[1:9]))
	require.Equal(t, byte(0), resp[9])
	require.Equal(t, cmdECInfo, resp[10])
}

func TestDeviceVersionDefault(t *testing.T) {
	resp := dispatch(t, &ec.Message{
		Type:    ec.MsgLegacy,
		Flags:   ec.FlagRaw,
		Command: cmdECInfo,
		Request: []byte{0x00, 0x00, 0x00},
	})
	require.Equal(t, "00.01.02", string(resp[1:9]))
}

func TestDeviceTelemetryLong(t *testing.T) {
	resp := dispatch(t, &ec.Message{
		Type:         ec.MsgTelemetryLong,
		Flags:        ec.FlagRaw | ec.FlagExtended,
		Command:      0x01,
		ResponseSize: ec.DataSizeExtended,
	})
	require.Len(t, resp, ec.DataSizeExtended)
	require.Equal(t, byte(0x01), resp[0])
}

func TestDeviceEcho(t *testing.T) {
	resp := dispatch(t, &ec.Message{
		Type:    ec.MsgProperty,
		Flags:   ec.FlagRaw,
		Command: 0x22,
		Request: []byte{0xde, 0xad},
	})
	require.Equal(t, []byte{0x00, 0xde, 0xad}, resp)
}
