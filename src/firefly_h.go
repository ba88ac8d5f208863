package firefly

// Protocol and modulation constants - probably belongs elsewhere

import "fmt"

/*
 * One photodiode sample takes this long, worst case, including the
 * SPI exchange with the ADC.  Works out to roughly 40 kHz.
 */

const SAMPLE_PERIOD_US = 25

/*
 * Pulse position modulation geometry.
 *
 * A symbol carries PPM_BITS bits by lighting the LED during exactly one
 * of 2^PPM_BITS time slots.  With PPM_BITS = 1 this degenerates into
 * Manchester encoding: every symbol period contains one transition.
 *
 * The slot width should never get close to the sample period or the
 * receiver's histogram has nothing to vote with.  20 samples per slot
 * has been reliable.
 */

const DEFAULT_PPM_BITS = 1

const DEFAULT_PPM_SLOT_US = SAMPLE_PERIOD_US * 20

const DEFAULT_PPM_PERIOD_US = DEFAULT_PPM_SLOT_US * (1 << DEFAULT_PPM_BITS)

/*
 * Frame layout, least significant bit first on the wire:
 *
 *	byte 0			preamble 0x55 (alternating bits)
 *	byte 1			(to << 4) | from
 *	byte 2			(ack_requested << 7) | length
 *	bytes 3 .. 3+length	payload
 *	last byte		postamble 0x24
 */

const PREAMBLE byte = 0b01010101

const POSTAMBLE byte = 0b00100100

const FRAME_OVERHEAD = 4 // preamble + address + length + postamble

const DEFAULT_MAX_MSG_SIZE = 60 // bytes

/*
 * Node addresses are 4 bits.  15 is reserved for broadcast so
 * everything else must be below it.
 */

const BROADCAST_ADDR byte = 0xF

const MAX_NODES = 16

/*
 * The receiver confirms each half of the alignment beacon with
 * 4-sample averages.  The margins below, in sample periods, absorb the
 * averaging latency and the clock skew between the two ends.
 */

const BEACON_EDGE_MARGIN_SAMPLES = 5

const BEACON_LOW_LEADIN_SAMPLES = 2

/*
 * How much of the byte window receive_ppm gives back for decoding
 * before the next symbol starts, in sample periods.
 */

const DEMOD_TAIL_MARGIN_SAMPLES = 3

/* MCP3002 reference voltage.  Full scale of the photodiode amplifier. */

const ADC_V_REF = 3.3

// Same contract as the C ASSERT macro this grew out of: scream and die.
func Assert(cond bool, what string) {
	if !cond {
		panic(fmt.Sprintf("assertion '%s' failed", what))
	}
}
