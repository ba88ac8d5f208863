package firefly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func default_test_modem(t *testing.T, io light_io) *modem_s {
	t.Helper()

	var p = default_config()
	p.rng_seed = 1

	var m, err = modem_init(p, io)
	require.NoError(t, err)
	m.high_cutoff = 0.5

	return m
}

// Byte 0x01, sent least significant bit first: the very first symbol
// carries a 1 (pulse in slot 1), the remaining seven carry 0 (pulse
// in slot 0).  Absolute slot indices, not just byte equality.
func TestBuildPpmSignal_BitOrdering(t *testing.T) {
	var m = default_test_modem(t, new_trace_io(SAMPLE_PERIOD_US, nil))

	var signal = make([]bool, 16)
	var used = m.build_ppm_signal([]byte{0x01}, signal)

	require.Equal(t, 16, used) // 8 symbols x 2 slots

	assert.False(t, signal[0])
	assert.True(t, signal[1]) // symbol 0, slot 1

	for sym := 1; sym < 8; sym++ {
		assert.True(t, signal[2*sym], "symbol %d slot 0", sym)
		assert.False(t, signal[2*sym+1], "symbol %d slot 1", sym)
	}
}

func TestBuildPpmSignal_OnePulsePerSymbol(t *testing.T) {
	var m = default_test_modem(t, new_trace_io(SAMPLE_PERIOD_US, nil))

	var frame = []byte{0x55, 0x23, 0x85, 0x68, 0x24}
	var signal = make([]bool, len(frame)*16)
	var used = m.build_ppm_signal(frame, signal)

	require.Equal(t, len(signal), used)

	for sym := 0; sym < len(frame)*8; sym++ {
		var lit = 0
		for slot := 0; slot < 2; slot++ {
			if signal[sym*2+slot] {
				lit++
			}
		}
		assert.Equal(t, 1, lit, "symbol %d", sym)
	}
}

// Watch the LED through a whole transmission of the single byte 0x01
// on an idle channel and check each edge lands on its slot boundary.
func TestSendPpm_EdgeTiming(t *testing.T) {
	var io = new_trace_io(SAMPLE_PERIOD_US, nil) // dark channel
	var m = default_test_modem(t, io)

	m.send_ppm(io, []byte{0x01})

	var events = io.led_events
	require.NotEmpty(t, events)

	// Beacon first: on for half a beacon period, off for the rest.
	require.True(t, events[0].on)
	var beacon_on = events[0].t
	require.False(t, events[1].on)
	assert.InDelta(t, float64(beacon_on+2000), float64(events[1].t), 3)

	// Packet timeline starts one beacon period after the beacon rose.
	var ps = beacon_on + 4000

	var expected = []struct {
		offset uint64
		on     bool
	}{
		{500, true},   // symbol 0, slot 1
		{1500, false}, // symbols 0 and 1 pulses are adjacent
		{2000, true},  // symbol 2, slot 0
		{2500, false},
		{3000, true},
		{3500, false},
		{4000, true},
		{4500, false},
		{5000, true},
		{5500, false},
		{6000, true},
		{6500, false},
		{7000, true},
		{7500, false},
	}

	var rest = events[2:]
	require.GreaterOrEqual(t, len(rest), len(expected))

	for i, want := range expected {
		assert.Equal(t, want.on, rest[i].on, "edge %d", i)
		assert.InDelta(t, float64(ps+want.offset), float64(rest[i].t), 4, "edge %d", i)
	}

	// Ends dark, and sending is clear again.
	assert.False(t, events[len(events)-1].on)
	assert.False(t, m.sending.Load())
}
