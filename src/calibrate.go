package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Measure the idle channel and derive the voltage
 *		threshold separating "dark" from "lit".
 *
 * Description:	With the LED off, ambient light plus amplifier noise
 *		gives a roughly stationary voltage.  Two seconds of
 *		~1 kHz samples feed running sums for the mean and the
 *		sample standard deviation; the cutoff goes four sigmas
 *		above the mean so noise alone essentially never trips
 *		the carrier sense or the slot histograms.
 *
 *		Run this before the receive thread starts.  The result
 *		is immutable for the life of the process.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
)

const calibrate_duration_us = 2_000_000

const calibrate_interval_us = 1000

const calibrate_sigmas = 4

type calibration_s struct {
	mean        float32
	stddev      float32
	high_cutoff float32
	count       int
}

func calibrate_high_cutoff(io light_io) (calibration_s, error) {
	var cal calibration_s

	var sum, sum_sq float64
	var count int

	var start = io.now_us()
	for io.now_us()-start < calibrate_duration_us {
		var val = float64(io.read_adc())
		sum += val
		sum_sq += val * val
		count++
		io.delay_us(calibrate_interval_us)
	}

	if count < 2 {
		return cal, fmt.Errorf("calibrate: only %d samples collected", count)
	}

	var mean = sum / float64(count)
	var variance = (sum_sq - float64(count)*mean*mean) / float64(count-1)

	if math.IsNaN(variance) || math.IsInf(variance, 0) {
		return cal, fmt.Errorf("calibrate: variance is not finite")
	}
	if variance < 0 {
		variance = 0 // rounding when the input is flat
	}

	cal.mean = float32(mean)
	cal.stddev = float32(math.Sqrt(variance))
	cal.high_cutoff = cal.mean + calibrate_sigmas*cal.stddev
	cal.count = count

	return cal, nil
}
