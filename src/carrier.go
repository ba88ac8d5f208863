package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Carrier sense with randomized backoff.
 *
 * Description:	Listen-before-talk.  The channel must look dark for
 *		one full beacon period before we light up; anything
 *		above the threshold during the window means somebody
 *		else is mid frame, so we go away for at least a whole
 *		packet time plus a random extra and try again.
 *
 *		The random spread is what breaks the symmetry when two
 *		nodes collide: both see each other, both back off, and
 *		with different draws one of them wins the next window.
 *		There is no RTS/CTS; the hidden terminal case is
 *		handled on the receive side instead (see recv.go).
 *
 *		Sensing uses 4-sample averages rather than single
 *		samples so one noise spike cannot cost us a backoff.
 *
 *------------------------------------------------------------------*/

func (m *modem_s) wait_for_clear_channel(io light_io) {
	for {
		var clear = true
		var start = io.now_us()

		for io.now_us()-start < m.p.slow_sensing_us {
			var val float32
			for i := 0; i < 4; i++ {
				val += io.read_adc()
			}
			if val/4 > m.high_cutoff {
				clear = false
				break
			}
		}

		if clear {
			return
		}

		io.delay_us(m.p.backoff_low_us + uint32(m.tx_rng.Intn(int(m.p.backoff_range_us))))
	}
}
