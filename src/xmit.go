package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Transmit path and the ack accounting around it.
 *
 * Description:	send is the upward-facing operation: frame the
 *		payload, get the channel, put it on the light, then
 *		wait out the ack window and report which nodes
 *		answered.
 *
 *		send_frame is the lower half: everything up to and
 *		including the transmission, without touching the ack
 *		bitmap.  The receive thread uses it directly to answer
 *		with an ack of its own - that path must not clear
 *		ack_received, because the far side's send is sitting
 *		in its ack window watching that very bitmap.
 *
 *		There is no automatic retransmission anywhere in
 *		here.  The caller sees the bitmap and decides.
 *
 *---------------------------------------------------------------*/

/*-------------------------------------------------------------------
 *
 * Name:        send
 *
 * Purpose:     Send one addressed message and collect acks.
 *
 * Inputs:	payload		- Up to max_msg_size-1 opaque bytes.
 *
 *		to_addr		- Destination node, or BROADCAST_ADDR.
 *
 *		ack_requested	- Ask receivers to answer.
 *
 * Returns:	Bitmap with bit i set for every node i whose ack
 *		arrived inside the window.  Zero when no ack was
 *		requested, or nobody answered.
 *
 * Description:	Unicast waits up to two packet periods but returns the
 *		moment the first ack lands.  Broadcast always sits out
 *		twenty packet periods: answers from multiple nodes
 *		collide and straggle, so the window stays open to
 *		collect whatever makes it through.
 *
 * Errors:	An oversized payload or a bad address is a programming
 *		error and fatal.  "Nobody answered" is not an error;
 *		it is an empty bitmap.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) send(payload []byte, to_addr byte, ack_requested bool) uint16 {
	Assert(len(payload) < m.p.max_msg_size, "payload shorter than max_msg_size")
	Assert(to_addr < MAX_NODES, "to address is 4 bits")

	m.send_mutex.Lock()
	defer m.send_mutex.Unlock()

	m.ack_received.Store(0)

	m.send_frame(m.io, payload, to_addr, ack_requested)

	if !ack_requested {
		return 0
	}

	var start = m.io.now_us()

	if to_addr == BROADCAST_ADDR {
		for m.io.now_us()-start < 20*m.p.packet_period_us {
			m.io.delay_us(m.p.sample_period_us)
		}
	} else {
		for m.io.now_us()-start < 2*m.p.packet_period_us && m.ack_received.Load() == 0 {
			m.io.delay_us(m.p.sample_period_us)
		}
	}

	return uint16(m.ack_received.Load())
}

/*-------------------------------------------------------------------
 *
 * Name:        send_frame
 *
 * Purpose:     Frame and transmit, nothing more.
 *
 * Description:	Safe to call from the receive thread for ack answers.
 *		tx_mutex keeps the frame arena and the LED to one
 *		transmission at a time; carrier sensing and the beacon
 *		happen inside send_ppm.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) send_frame(io light_io, payload []byte, to_addr byte, ack_requested bool) {
	m.tx_mutex.Lock()
	defer m.tx_mutex.Unlock()

	m.send_frame_locked(io, payload, to_addr, ack_requested)
}

// Ack answers come from the receive thread and must not wait for a
// busy transmitter: by the time it finished, the far side's ack
// window would be long closed.  If the transmitter is mid-send the
// ack is simply dropped and the far side retries.
func (m *modem_s) send_frame_if_idle(io light_io, payload []byte, to_addr byte, ack_requested bool) bool {
	if !m.tx_mutex.TryLock() {
		return false
	}
	defer m.tx_mutex.Unlock()

	m.send_frame_locked(io, payload, to_addr, ack_requested)

	return true
}

func (m *modem_s) send_frame_locked(io light_io, payload []byte, to_addr byte, ack_requested bool) {
	Assert(len(payload) < m.p.max_msg_size, "payload shorter than max_msg_size")
	Assert(to_addr < MAX_NODES, "to address is 4 bits")

	var count = build_frame(m.frame_arena, to_addr, m.p.my_id, ack_requested, payload)

	text_color_set(DW_COLOR_XMIT)
	dw_printf("[%d>%d] %s\n", m.p.my_id, to_addr, frame_hex_dump(m.frame_arena[:count]))

	m.send_ppm(io, m.frame_arena[:count])
}
