package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Pulse position modulation transmitter.
 *
 * Description:	The frame is first expanded into a boolean timeline
 *		with one entry per slot: true where the LED must be
 *		lit.  The transmit loop then does nothing but compare
 *		the clock against the timeline and write the LED on
 *		changes.
 *
 *		Every edge is referenced to the absolute packet start
 *		time, so timing error never accumulates over the frame
 *		the way it would with per-symbol delays.  The loop is
 *		the innermost real-time path in the program: no
 *		allocation, no locks, no calls besides now_us and
 *		set_led.
 *
 *------------------------------------------------------------------*/

/*-------------------------------------------------------------------
 *
 * Name:        build_ppm_signal
 *
 * Purpose:     Expand frame bytes into the per-slot LED timeline.
 *
 * Inputs:	frame		- Complete frame bytes.
 *
 *		signal		- Destination, at least
 *				  len(frame) * symbols_per_byte *
 *				  ppm_slot_count entries.  Cleared and
 *				  filled here.
 *
 * Returns:	Number of slots used.
 *
 * Description:	Bytes are sent least significant bit group first.
 *		Each group of PPM_BITS bits selects which slot of its
 *		symbol period carries the pulse; all other slots stay
 *		dark.  Exactly one true per symbol, by construction.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) build_ppm_signal(frame []byte, signal []bool) int {
	var slots_per_symbol = m.p.ppm_slot_count
	var symbols = m.p.symbols_per_byte
	var used = len(frame) * symbols * slots_per_symbol

	for i := range signal[:used] {
		signal[i] = false
	}

	for i, b := range frame {
		for j := 0; j < symbols; j++ {
			var val = (int(b) >> (j * m.p.ppm_bits)) & (slots_per_symbol - 1)
			signal[slots_per_symbol*symbols*i+j*slots_per_symbol+val] = true
		}
	}

	return used
}

/*-------------------------------------------------------------------
 *
 * Name:        send_ppm
 *
 * Purpose:     Put one frame on the light, with carrier sense and
 *		the alignment beacon in front of it.
 *
 * Inputs:	frame		- Complete frame bytes.
 *
 * Description:	Order matters here:
 *
 *		1. Wait for a clean sensing window (backing off
 *		   randomly as long as someone else is lighting the
 *		   channel).
 *		2. Set sending, so our own receive thread knows the
 *		   light it is about to see is ours.  This must happen
 *		   before the first LED write.
 *		3. Beacon: half period high, half period low.
 *		4. The timeline loop.
 *		5. LED off, then clear sending.
 *
 * Caller:	Holds tx_mutex.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) send_ppm(io light_io, frame []byte) {
	var used = m.build_ppm_signal(frame, m.signal_arena)
	var signal = m.signal_arena[:used]

	m.wait_for_clear_channel(io)

	m.sending.Store(true)

	m.send_beacon(io)

	var packet_start = io.now_us()
	var packet_duration = uint32(len(frame)*m.p.symbols_per_byte) * m.p.ppm_period_us
	var led_on = false

	for {
		var elapsed = io.now_us() - packet_start
		if elapsed >= packet_duration {
			break
		}
		var target = signal[elapsed/m.p.ppm_slot_us]
		if target != led_on {
			io.set_led(target)
			led_on = target
		}
	}

	io.set_led(false)

	m.sending.Store(false)
}
