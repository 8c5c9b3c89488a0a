package raw

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ectalks/ecdbg/pkg/ec"
)

func TestFrame(t *testing.T) {
	resp := make([]byte, ec.DataSizeExtended)
	testCases := []struct {
		name       string
		data       []byte
		expectType uint16
		expectCmd  byte
		expectReq  []byte
		flags      ec.Flag
		respSize   int
	}{
		{
			"minimum three bytes",
			[]byte{0x00, 0xf0, 0x38},
			0x00f0, 0x38, nil,
			ec.FlagRaw, ec.DataSize,
		},
		{
			"with payload",
			[]byte{0x00, 0xf0, 0x38, 0x00, 0x03, 0x00},
			0x00f0, 0x38, []byte{0x00, 0x03, 0x00},
			ec.FlagRaw, ec.DataSize,
		},
		{
			"extended telemetry",
			[]byte{0xf0, 0xf1, 0x01, 0x02},
			ec.MsgTelemetryLong, 0x01, []byte{0x02},
			ec.FlagRaw | ec.FlagExtended, ec.DataSizeExtended,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := Frame(tc.data, resp)
			require.NoError(t, err)
			require.Equal(t, tc.expectType, msg.Type)
			require.Equal(t, tc.expectCmd, msg.Command)
			if len(tc.expectReq) == 0 {
				require.Empty(t, msg.Request)
			} else {
				require.Equal(t, tc.expectReq, msg.Request)
			}
			require.Equal(t, tc.flags, msg.Flags)
			require.Equal(t, tc.respSize, msg.ResponseSize)
		})
	}
}

func TestFrameInsufficientData(t *testing.T) {
	resp := make([]byte, ec.DataSizeExtended)
	for _, data := range [][]byte{nil, {0x00}, {0x00, 0xf0}} {
		_, err := Frame(data, resp)
		require.Equal(t, ErrInvalidInput, err)
	}
}
