package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Alignment beacon: produce it ahead of each frame and
 *		validate it on receive.
 *
 * Description:	One beacon period, half lit and half dark, precedes
 *		the preamble.  Its falling edge gives the receiver an
 *		absolute time reference: when validation succeeds we
 *		are standing exactly on the first symbol boundary and
 *		the slot arithmetic in receive_ppm works from there.
 *
 *		Validation is deliberately strict.  Light that does
 *		not stay high for the whole first half, or dark that
 *		does not stay dark for the whole second half, is not a
 *		beacon: reflections, lightning, someone walking past
 *		with a phone torch.  Rejecting early costs one trip
 *		back to idle; accepting a false start costs a whole
 *		frame of garbage decode.
 *
 *------------------------------------------------------------------*/

/* Where the beacon validator stands.  Failure from any state goes
   back to idle. */

type beacon_state_e int

const (
	BEACON_IDLE beacon_state_e = iota
	BEACON_HIGH                /* confirming the lit half */
	BEACON_LOW                 /* confirming the dark half */
	BEACON_LOCKED
)

func (m *modem_s) send_beacon(io light_io) {
	io.set_led(true)
	io.delay_us(m.p.beacon_period_us / 2)
	io.set_led(false)
	io.delay_us(m.p.beacon_period_us / 2)
}

/*-------------------------------------------------------------------
 *
 * Name:        validate_beacon
 *
 * Purpose:     Confirm that the signal edge we just saw is the start
 *		of a real beacon, and come out aligned to the symbol
 *		grid.
 *
 * Inputs:	Called right after a sample crossed the threshold.
 *
 * Returns:	true when both halves checked out and we are standing
 *		on the first symbol boundary.  false sends the caller
 *		back to idle.
 *
 * Description:	First half: 4-sample averages must stay above the
 *		threshold until the half period, less a small margin
 *		for the averaging latency.  Then sleep whatever is
 *		left, landing on the midpoint.
 *
 *		Second half: skip a couple of samples of lead-in for
 *		the transmitter's falling edge, then the averages must
 *		stay below the threshold, same margin, then sleep to
 *		the end.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) validate_beacon(io light_io) bool {
	var half = m.p.beacon_period_us / 2
	var margin = BEACON_EDGE_MARGIN_SAMPLES * m.p.sample_period_us

	var state = BEACON_HIGH

	for state != BEACON_LOCKED {
		switch state {
		case BEACON_HIGH:
			var dur uint32
			var start = io.now_us()
			for {
				dur = io.now_us() - start
				if dur >= half-margin {
					break
				}
				var val float32
				for i := 0; i < 4; i++ {
					val += io.read_adc()
				}
				if val/4 < m.high_cutoff {
					return false
				}
			}
			if dur < half {
				io.delay_us(half - dur)
			}
			state = BEACON_LOW

		case BEACON_LOW:
			var dur uint32
			var start = io.now_us()
			io.delay_us(BEACON_LOW_LEADIN_SAMPLES * m.p.sample_period_us)
			for {
				dur = io.now_us() - start
				if dur >= half-margin {
					break
				}
				var val float32
				for i := 0; i < 4; i++ {
					val += io.read_adc()
				}
				if val/4 > m.high_cutoff {
					return false
				}
			}
			if dur < half {
				io.delay_us(half - dur)
			}
			state = BEACON_LOCKED
		}
	}

	return true
}
