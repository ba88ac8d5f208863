package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Pulse position demodulator: recover one byte from
 *		the photodiode.
 *
 * Description:	The receiver does not try to find individual edges.
 *		It oversamples an entire byte worth of symbol periods,
 *		counting, per slot, how many samples came back above
 *		the calibrated threshold.  Whichever slot of each
 *		symbol collected the most votes is taken as the pulse
 *		position for that symbol.
 *
 *		Ties go to the lower slot index.  In the common case
 *		of an all-dark window every slot holds zero and the
 *		symbol decodes as 0; changing that tie-break changes
 *		what garbage frames look like, so leave it alone.
 *
 *		The sampling stops a few sample periods short of the
 *		byte boundary.  That margin pays for the argmax loop
 *		below and absorbs clock skew against the transmitter;
 *		the final delay re-aligns us to the next byte.
 *
 *------------------------------------------------------------------*/

func (m *modem_s) receive_ppm(io light_io) byte {
	var buf = m.hist_arena
	for i := range buf {
		buf[i] = 0
	}

	var byte_period = uint32(m.p.symbols_per_byte) * m.p.ppm_period_us
	var window = byte_period - DEMOD_TAIL_MARGIN_SAMPLES*m.p.sample_period_us

	var start = io.now_us()
	for {
		var elapsed = io.now_us() - start
		if elapsed >= window {
			break
		}
		if io.read_adc() > m.high_cutoff {
			buf[elapsed/m.p.ppm_slot_us]++
		}
	}

	var received byte
	for i := 0; i < m.p.symbols_per_byte; i++ {
		var on_slot = 0
		var max_count = 0
		for j := 0; j < m.p.ppm_slot_count; j++ {
			if buf[i*m.p.ppm_slot_count+j] > max_count {
				max_count = buf[i*m.p.ppm_slot_count+j]
				on_slot = j
			}
		}
		received |= byte(on_slot << (i * m.p.ppm_bits))
	}

	var elapsed = io.now_us() - start
	if elapsed < byte_period {
		io.delay_us(byte_period - elapsed)
	}

	return received
}
