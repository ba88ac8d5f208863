package firefly

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBuildFrame(t *testing.T) {
	// node 2 sends "hello" to node 3, ack requested
	var buf [64]byte
	var n = build_frame(buf[:], 3, 2, true, []byte("hello"))

	require.Equal(t, 9, n)
	assert.Equal(t,
		[]byte{0x55, 0x23, 0x85, 0x68, 0x65, 0x6C, 0x6C, 0x6F, 0x24},
		buf[:n])
}

func TestBuildFrame_Ack(t *testing.T) {
	// the answer node 3 sends back
	var buf [64]byte
	var n = build_frame(buf[:], 2, 3, false, []byte("ack"))

	require.Equal(t, 7, n)
	assert.Equal(t, []byte{0x55, 0x32, 0x03, 0x61, 0x63, 0x6B, 0x24}, buf[:n])
}

func TestBuildFrame_Empty(t *testing.T) {
	var buf [4]byte
	var n = build_frame(buf[:], 1, 0, false, nil)

	require.Equal(t, 4, n)
	assert.Equal(t, []byte{0x55, 0x10, 0x00, 0x24}, buf[:n])
}

func TestSplitAddress(t *testing.T) {
	var to, from = split_address(0x23)
	assert.EqualValues(t, 2, to)
	assert.EqualValues(t, 3, from)

	to, from = split_address(0xF0)
	assert.Equal(t, BROADCAST_ADDR, to)
	assert.EqualValues(t, 0, from)
}

func TestSplitLength(t *testing.T) {
	var ack, length = split_length(0x85)
	assert.True(t, ack)
	assert.Equal(t, 5, length)

	ack, length = split_length(0x7E)
	assert.False(t, ack)
	assert.Equal(t, 126, length)
}

// Whatever goes in comes back out of the header fields, for every
// address pair, payload and ack flag.
func TestFrameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var to = rapid.ByteMax(15).Draw(t, "to")
		var from = rapid.ByteMax(15).Draw(t, "from")
		var ack = rapid.Bool().Draw(t, "ack")
		var payload = rapid.SliceOfN(rapid.Byte(), 0, DEFAULT_MAX_MSG_SIZE-1).Draw(t, "payload")

		var buf [DEFAULT_MAX_MSG_SIZE + FRAME_OVERHEAD]byte
		var n = build_frame(buf[:], to, from, ack, payload)

		require.Equal(t, len(payload)+FRAME_OVERHEAD, n)
		assert.Equal(t, PREAMBLE, buf[0])
		assert.Equal(t, POSTAMBLE, buf[n-1])

		var got_to, got_from = split_address(buf[1])
		var got_ack, got_len = split_length(buf[2])

		assert.Equal(t, to, got_to)
		assert.Equal(t, from, got_from)
		assert.Equal(t, ack, got_ack)
		require.Equal(t, len(payload), got_len)
		assert.True(t, bytes.Equal(payload, buf[3:3+got_len]))
	})
}

func TestFrameHexDump(t *testing.T) {
	assert.Equal(t, "55 23 85 24", frame_hex_dump([]byte{0x55, 0x23, 0x85, 0x24}))
	assert.Equal(t, "", frame_hex_dump(nil))
}
