package firefly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// On a quiet channel the sensing window is one pass: the whole wait
// costs one slow-sensing period and change.
func TestCarrierSense_HonorsIdle(t *testing.T) {
	var io = new_trace_io(SAMPLE_PERIOD_US, func(uint64) float32 {
		return sim_cutoff_volts - 0.05 // just under the threshold
	})
	var m = default_test_modem(t, io)

	var before = io.t
	m.wait_for_clear_channel(io)
	var elapsed = io.t - before

	require.GreaterOrEqual(t, elapsed, uint64(m.p.slow_sensing_us))
	assert.Less(t, elapsed, uint64(m.p.slow_sensing_us)+500)
}

// And the whole transmission, carrier sense included, stays inside
// sensing + beacon + frame time.
func TestSendPpm_IdleChannelBound(t *testing.T) {
	var io = new_trace_io(SAMPLE_PERIOD_US, nil)
	var m = default_test_modem(t, io)

	var frame = []byte{0x55, 0x10, 0x00, 0x24}
	var frame_duration = uint64(len(frame)) * 8 * DEFAULT_PPM_PERIOD_US

	var before = io.t
	m.send_ppm(io, frame)
	var elapsed = io.t - before

	assert.Less(t, elapsed,
		uint64(m.p.slow_sensing_us)+uint64(m.p.beacon_period_us)+frame_duration+1000)
	assert.NotEmpty(t, io.led_events)
}

// A busy channel costs at least a whole packet period of backoff
// before sensing restarts, and the sender does get through once the
// channel goes quiet.
func TestCarrierSense_BackoffOnContention(t *testing.T) {
	var busy_until = uint64(6000)
	var io = new_trace_io(SAMPLE_PERIOD_US, func(tm uint64) float32 {
		if tm < busy_until {
			return sim_lit_volts
		}
		return sim_dark_volts
	})
	var m = default_test_modem(t, io)

	var before = io.t
	m.wait_for_clear_channel(io)
	var elapsed = io.t - before

	// One backoff at minimum, then a full clean window.
	require.GreaterOrEqual(t, elapsed, uint64(m.p.backoff_low_us)+uint64(m.p.slow_sensing_us))

	// And no more than the single backoff this trace can cause.
	assert.Less(t, elapsed,
		uint64(m.p.backoff_low_us)+uint64(m.p.backoff_range_us)+2*uint64(m.p.slow_sensing_us)+1000)
}

// Two different rng seeds draw two different backoff schedules.
func TestBackoff_DistinctDraws(t *testing.T) {
	var draws = func(seed int64) uint64 {
		var io = new_trace_io(SAMPLE_PERIOD_US, func(tm uint64) float32 {
			if tm < 6000 {
				return sim_lit_volts
			}
			return sim_dark_volts
		})

		var p = default_config()
		p.rng_seed = seed
		var m, err = modem_init(p, io)
		require.NoError(t, err)
		m.high_cutoff = sim_cutoff_volts

		var before = io.t
		m.wait_for_clear_channel(io)
		return io.t - before
	}

	assert.NotEqual(t, draws(12345), draws(54321))
}
