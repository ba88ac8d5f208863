package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	The always-on receive loop.
 *
 * Description:	One long-running thread owns the ADC.  It sits dark
 *		waiting for light, validates the alignment beacon,
 *		decodes preamble, header, payload and postamble, and
 *		dispatches.  Every failure along the way drops
 *		whatever partial state exists and goes back to
 *		waiting; the medium is noisy and rejects are routine,
 *		not errors.
 *
 *		The loop is written as an explicit state machine.
 *		Failure from any state re-enters RX_IDLE, and there is
 *		exactly one place where each kind of work happens.
 *
 *		Hidden terminal mitigation: the moment the beacon
 *		validates, we raise our own LED and hold it through
 *		the entire decode.  A third node that cannot see the
 *		current transmitter can see us, and its carrier sense
 *		will keep it quiet instead of trampling the tail of
 *		the frame.  The LED drops immediately after the
 *		postamble byte, success or not.
 *
 *------------------------------------------------------------------*/

type rx_state_e int

const (
	RX_IDLE      rx_state_e = iota /* dark, waiting for light */
	RX_BEACON                      /* saw light, validating the beacon */
	RX_PREAMBLE                    /* symbol-locked, expecting 0x55 */
	RX_HEADER                      /* address and length bytes */
	RX_PAYLOAD                     /* length payload bytes */
	RX_POSTAMBLE                   /* expecting 0x24 */
	RX_DISPATCH                    /* frame accepted, route it */
)

/* How long, exactly, an ack answer payload is. */

var ack_payload = []byte("ack")

func (m *modem_s) receive_loop() {
	var io = m.rx_io

	var buf = make([]byte, m.p.max_msg_size+1)

	var state = RX_IDLE
	var to_addr, from_addr byte
	var ack_requested bool
	var msg_size int

	for !m.end_of_program.Load() {
		switch state {

		case RX_IDLE:
			// Desynchronize from any other receiver that is
			// restarting at the same moment.
			io.delay_us(uint32(m.rx_rng.Intn(int(m.p.ppm_slot_us))))

			for io.read_adc() < m.high_cutoff {
				if m.end_of_program.Load() {
					return
				}
			}

			if m.sending.Load() {
				// Our own light.  Wait out the transmission.
				for m.sending.Load() && !m.end_of_program.Load() {
					io.delay_us(m.p.sample_period_us)
				}
				continue
			}

			state = RX_BEACON

		case RX_BEACON:
			if m.validate_beacon(io) && !m.sending.Load() {
				io.set_led(true) // channel-busy flag for hidden terminals
				state = RX_PREAMBLE
			} else {
				state = RX_IDLE
			}

		case RX_PREAMBLE:
			var received = m.receive_ppm(io)
			if received == PREAMBLE {
				state = RX_HEADER
			} else {
				io.set_led(false)
				text_color_set(DW_COLOR_DEBUG)
				dw_printf("Failed PREAMBLE (detected 0x%x)\n", received)
				state = RX_IDLE
			}

		case RX_HEADER:
			to_addr, from_addr = split_address(m.receive_ppm(io))
			ack_requested, msg_size = split_length(m.receive_ppm(io))

			if msg_size >= m.p.max_msg_size {
				// Nothing sane ever puts that on the wire.
				// Stop before wasting a payload worth of time.
				io.set_led(false)
				state = RX_IDLE
			} else {
				state = RX_PAYLOAD
			}

		case RX_PAYLOAD:
			for i := 0; i < msg_size; i++ {
				buf[i] = m.receive_ppm(io)
			}
			buf[msg_size] = 0
			state = RX_POSTAMBLE

		case RX_POSTAMBLE:
			var received = m.receive_ppm(io)
			io.set_led(false)
			if received == POSTAMBLE {
				state = RX_DISPATCH
			} else {
				text_color_set(DW_COLOR_DEBUG)
				dw_printf("Failed POSTAMBLE (detected 0x%x, %d->%d, %d bytes)\n",
					received, from_addr, to_addr, msg_size)
				state = RX_IDLE
			}

		case RX_DISPATCH:
			m.dispatch_frame(io, to_addr, from_addr, ack_requested, buf[:msg_size])
			state = RX_IDLE
		}
	}

	io.set_led(false) // in case shutdown landed mid-decode
}

/*-------------------------------------------------------------------
 *
 * Name:        dispatch_frame
 *
 * Purpose:     Route one fully validated frame.
 *
 * Description:	Our own address coming back as the source means a
 *		reflection of something we sent; the sending guard
 *		should have caught it, but belt and braces.
 *
 *		An "ack" payload addressed to us is link bookkeeping:
 *		set the sender's bit and stay off the air.  Anything
 *		else addressed to us gets an ack back first (when one
 *		was requested) and then goes up through the queue.
 *		Frames for other nodes are worth logging - a node that
 *		can hear both ends makes a useful snoop - but nothing
 *		more.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) dispatch_frame(io light_io, to_addr byte, from_addr byte, ack_requested bool, payload []byte) {
	if from_addr == m.p.my_id {
		return
	}

	if to_addr != m.p.my_id && to_addr != BROADCAST_ADDR {
		m.flog.log_frame(from_addr, to_addr, ack_requested, payload, "snoop")
		return
	}

	if string(payload) == string(ack_payload) {
		m.ack_received.Or(1 << from_addr)
		m.flog.log_frame(from_addr, to_addr, ack_requested, payload, "ack")
		return
	}

	if ack_requested {
		// Give the sender a moment to turn its receiver around.
		io.delay_us(2 * m.p.sample_period_us)
		m.send_frame_if_idle(io, ack_payload, from_addr, false)
	}

	m.flog.log_frame(from_addr, to_addr, ack_requested, payload, "ok")
	m.dlq.append(from_addr, to_addr, ack_requested, payload)
}

// Dispatch thread: drains the queue and does everything the receive
// thread must not spend time on.
func (m *modem_s) dispatch_loop() {
	for {
		var msg = m.dlq.wait_remove()
		if msg == nil {
			return
		}

		text_color_set(DW_COLOR_REC)
		dw_printf("(%d -> %d) MSG RECEIVED (%d): \"%s\"\n",
			msg.from, msg.to, len(msg.payload), printable_payload(msg.payload))

		if m.on_message != nil {
			m.on_message(msg.from, msg.to, msg.payload)
		}
		m.srv.broadcast_msg(msg)
		m.ptysrv.broadcast_msg(msg)
	}
}
