package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	The modem object: configuration, hardware handle,
 *		and the little bit of state the two link threads
 *		share.
 *
 * Description:	Exactly three values cross the thread boundary.
 *
 *		sending		- True while this node is driving the
 *				  LED with a frame.  The receive loop
 *				  checks it before treating light as an
 *				  incoming signal, so a node never
 *				  decodes its own transmission.
 *				  Stored before the first LED write and
 *				  cleared after the LED is back low.
 *
 *		ack_received	- Bitmap of nodes whose ack we have
 *				  decoded since the last send.  The
 *				  receive thread ORs bits in, the send
 *				  path zeroes it and reads it.
 *
 *		end_of_program	- Tells the receive loop to return.
 *
 *		All three are atomics.  The calibrated threshold and
 *		the configuration are written before the receive
 *		thread starts and never change afterwards.
 *
 *------------------------------------------------------------------*/

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

type modem_s struct {
	p config_s /* immutable after modem_init */

	/* Each thread carries its own handle to the hardware.  On a
	   real node both are the same rpi_io_s; the split exists so
	   the transmit path always runs against the handle of the
	   thread that invoked it (the main thread for send, the
	   receive thread for ack answers). */

	io    light_io /* main/transmitter thread */
	rx_io light_io /* receive thread */

	high_cutoff float32 /* written once, before start_receiver */

	sending        atomic.Bool
	ack_received   atomic.Uint32
	end_of_program atomic.Bool

	tx_mutex sync.Mutex /* one frame on the LED at a time; never
	   touched inside the timing loop itself */
	send_mutex sync.Mutex /* serializes complete send + ack windows
	   when both the operator prompt and a network client transmit */

	tx_rng *rand.Rand /* backoff draws, guarded by tx_mutex */
	rx_rng *rand.Rand /* phase jitter, receive thread only */

	/* Transmit arenas, guarded by tx_mutex.  Sized once so the
	   timing loop never allocates. */

	signal_arena []bool
	frame_arena  []byte

	/* Receive side. */

	hist_arena []int /* slot histogram, receive thread only */

	dlq        *dlq_s
	on_message func(from byte, to byte, payload []byte)
	flog       *frame_log_s  /* optional CSV log of received frames */
	srv        *app_server_s /* optional TCP app service */
	ptysrv     *pty_server_s /* optional pseudo-terminal service */

	recv_done     chan struct{}
	dispatch_done chan struct{}
}

func modem_init(p config_s, io light_io) (*modem_s, error) {
	if err := config_finalize(&p); err != nil {
		return nil, err
	}

	var seed = p.rng_seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var m = &modem_s{
		p:      p,
		io:     io,
		rx_io:  io,
		tx_rng: rand.New(rand.NewSource(seed)),
		rx_rng: rand.New(rand.NewSource(seed + 1)),
		dlq:    dlq_init(),
	}

	var frame_max = p.max_msg_size + FRAME_OVERHEAD
	m.signal_arena = make([]bool, p.ppm_slot_count*p.symbols_per_byte*frame_max)
	m.frame_arena = make([]byte, frame_max)
	m.hist_arena = make([]int, p.symbols_per_byte*p.ppm_slot_count)

	return m, nil
}

// Must run before start_receiver, with the LED off.
func (m *modem_s) calibrate() (calibration_s, error) {
	var cal, err = calibrate_high_cutoff(m.io)
	if err != nil {
		return cal, err
	}
	m.high_cutoff = cal.high_cutoff
	return cal, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        start_receiver
 *
 * Purpose:     Fork the always-on receive thread and the dispatch
 *		thread that hands decoded messages upward.
 *
 * Inputs:	on_message	- Called, from the dispatch thread, for
 *				  every payload addressed to this node
 *				  or to broadcast, except "ack" answers,
 *				  which only set ack_received.  May be
 *				  nil.
 *
 * Description:	The receive thread does all the sampling and symbol
 *		work and nothing else; decoded messages go through a
 *		queue so slow consumers cannot stall the demodulator.
 *
 *--------------------------------------------------------------------*/

func (m *modem_s) start_receiver(on_message func(from byte, to byte, payload []byte)) {
	m.on_message = on_message
	m.recv_done = make(chan struct{})
	m.dispatch_done = make(chan struct{})

	go func() {
		if m.p.realtime {
			enable_realtime()
		}
		m.receive_loop()
		close(m.recv_done)
	}()

	go func() {
		m.dispatch_loop()
		close(m.dispatch_done)
	}()
}

func (m *modem_s) stop() {
	m.end_of_program.Store(true)

	if m.recv_done != nil {
		<-m.recv_done
	}

	m.dlq.shutdown()
	if m.dispatch_done != nil {
		<-m.dispatch_done
	}
}
