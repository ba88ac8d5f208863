package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Test doubles for the hardware: a scripted single
 *		thread fake, and a lockstep multi-node simulation of
 *		the shared optical channel.
 *
 * Description:	trace_io_s drives one thread of modem code against a
 *		voltage-versus-time function, advancing a virtual
 *		clock as the code samples and sleeps.  That covers the
 *		modulator, demodulator, carrier sense and calibration
 *		in isolation, the same synthesize-then-decode approach
 *		as feeding a generated recording to the receiver.
 *
 *		sim_s models several nodes under one roof.  Every
 *		thread of every node registers a port with its own
 *		virtual clock; a port may only advance while it is not
 *		ahead of the slowest other live port, which keeps all
 *		the clocks within one io operation of each other.  A
 *		port's photodiode sees the lit LED of any station;
 *		whether it sees its own station's LED is configurable,
 *		because the physical builds differ in exactly that
 *		(a diode facing away from its LED versus reflections).
 *
 *		Ports can carry a small clock skew, like real
 *		crystals.  Among other things this is what breaks the
 *		tie when two receivers try to answer a broadcast in
 *		the same instant.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
)

/* ------------------------- trace fake ------------------------- */

type led_event_s struct {
	t  uint64
	on bool
}

type trace_io_s struct {
	t             uint64
	sample_period uint32
	volts         func(t uint64) float32
	led_events    []led_event_s
}

func new_trace_io(sample_period uint32, volts func(t uint64) float32) *trace_io_s {
	if volts == nil {
		volts = func(uint64) float32 { return 0 }
	}
	return &trace_io_s{
		sample_period: sample_period,
		volts:         volts,
	}
}

func (io *trace_io_s) now_us() uint32 {
	io.t++
	return uint32(io.t)
}

func (io *trace_io_s) delay_us(d uint32) {
	io.t += uint64(d)
}

func (io *trace_io_s) set_led(on bool) {
	io.led_events = append(io.led_events, led_event_s{t: io.t, on: on})
}

func (io *trace_io_s) read_adc() float32 {
	var v = io.volts(io.t)
	io.t += uint64(io.sample_period)
	return v
}

// The LED state the event list implies at time t.
func (io *trace_io_s) led_at(t uint64) bool {
	var on = false
	for _, ev := range io.led_events {
		if ev.t > t {
			break
		}
		on = ev.on
	}
	return on
}

/* ----------------------- lockstep medium ----------------------- */

type sim_station_s struct {
	name string
	led  bool
}

type sim_s struct {
	mutex sync.Mutex
	cond  *sync.Cond

	stations []*sim_station_s
	ports    []*sim_port_s

	sample_period uint32
	dark_volts    float32
	lit_volts     float32

	aborting bool
}

type sim_port_s struct {
	sim          *sim_s
	station      *sim_station_s
	name         string
	t            float64 /* local virtual microseconds */
	skew         float64 /* fractional clock error, e.g. 0.001 */
	self_coupled bool    /* photodiode sees own station's LED */
	done         bool
}

func sim_new(sample_period uint32, dark_volts float32, lit_volts float32) *sim_s {
	var s = &sim_s{
		sample_period: sample_period,
		dark_volts:    dark_volts,
		lit_volts:     lit_volts,
	}
	s.cond = sync.NewCond(&s.mutex)
	return s
}

func (s *sim_s) station(name string) *sim_station_s {
	var st = &sim_station_s{name: name}
	s.stations = append(s.stations, st)
	return st
}

func (s *sim_s) port(st *sim_station_s, name string, skew float64, self_coupled bool) *sim_port_s {
	var p = &sim_port_s{
		sim:          s,
		station:      st,
		name:         name,
		skew:         skew,
		self_coupled: self_coupled,
	}
	s.mutex.Lock()
	s.ports = append(s.ports, p)
	s.mutex.Unlock()
	return p
}

// The port's goroutine will make no further io calls.  Without this
// the other ports would wait for its clock forever.
func (p *sim_port_s) finish() {
	var s = p.sim
	s.mutex.Lock()
	p.done = true
	s.cond.Broadcast()
	s.mutex.Unlock()
}

// Ends lockstep entirely: every port free-runs so shutdown flags get
// observed no matter what order the threads wind down in.
func (s *sim_s) abort() {
	s.mutex.Lock()
	s.aborting = true
	s.cond.Broadcast()
	s.mutex.Unlock()
}

// True while some other live port is behind us.
func (p *sim_port_s) ahead_locked() bool {
	for _, q := range p.sim.ports {
		if q != p && !q.done && p.t > q.t {
			return true
		}
	}
	return false
}

func (p *sim_port_s) advance(dt uint32) {
	var s = p.sim
	s.mutex.Lock()
	p.t += float64(dt) * (1 + p.skew)
	s.cond.Broadcast()
	for !s.aborting && !p.done && p.ahead_locked() {
		s.cond.Wait()
	}
	s.mutex.Unlock()
}

func (p *sim_port_s) now_us() uint32 {
	p.advance(1)

	p.sim.mutex.Lock()
	var t = uint32(p.t)
	p.sim.mutex.Unlock()

	return t
}

func (p *sim_port_s) delay_us(d uint32) {
	p.advance(d)
}

func (p *sim_port_s) set_led(on bool) {
	var s = p.sim
	s.mutex.Lock()
	p.station.led = on
	s.cond.Broadcast()
	s.mutex.Unlock()
}

func (p *sim_port_s) read_adc() float32 {
	var s = p.sim

	s.mutex.Lock()
	var v = s.dark_volts
	for _, st := range s.stations {
		if st.led && (st != p.station || p.self_coupled) {
			v = s.lit_volts
		}
	}
	s.mutex.Unlock()

	p.advance(s.sample_period)

	return v
}

/* --------------------- shared test helpers --------------------- */

/*
 * Scaled-down timing for the multi-node tests: same ratios as the
 * real hardware (20 samples per slot, Manchester), much less virtual
 * time per frame.
 */

func link_test_config(my_id byte, max_msg_size int, seed int64) config_s {
	var p = default_config()
	p.my_id = my_id
	p.sample_period_us = 5
	p.ppm_slot_us = 100
	p.max_msg_size = max_msg_size
	p.rng_seed = seed
	p.realtime = false
	return p
}

const sim_dark_volts = 0.1

const sim_lit_volts = 1.0

const sim_cutoff_volts = 0.5

// Flag everything first, then break lockstep, then join.  Stopping
// the modems one at a time under lockstep can strand a receive loop
// waiting on a clock that is no longer moving.
func stop_sim_modems(s *sim_s, modems ...*modem_s) {
	for _, m := range modems {
		m.end_of_program.Store(true)
	}
	s.abort()
	for _, m := range modems {
		m.stop()
	}
}
