package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	ADC diagnostics: sample-rate profiling and raw
 *		voltage capture.
 *
 * Description:	The modem budgets one sample per SAMPLE_PERIOD_US, so
 *		it is worth knowing what the hardware actually
 *		delivers before trusting any of the slot timing.  The
 *		capture mode writes timestamped voltages to a file for
 *		decoding a transmission by hand - the most effective
 *		way yet found of debugging modulation problems.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
)

/*-------------------------------------------------------------------
 *
 * Name:        adc_rate_stats
 *
 * Purpose:     Measure and print the achievable sample rate.
 *
 * Inputs:	io		- Hardware.
 *
 *		sample_count	- Samples per measurement.
 *
 *		iterations	- How many measurements to print.
 *
 *--------------------------------------------------------------------*/

func adc_rate_stats(io light_io, sample_count int, iterations int) {
	for i := 0; i < iterations; i++ {
		var start = io.now_us()
		for j := 0; j < sample_count; j++ {
			_ = io.read_adc()
		}
		var stop = io.now_us()

		text_color_set(DW_COLOR_INFO)
		dw_printf("sample rate is %.3fHz\n",
			1e6*float64(sample_count)/float64(stop-start))
	}
}

// Writes "milliseconds <tab> volts" lines for duration_ms, flat out.
func adc_log_voltage(io light_io, path string, duration_ms float64) error {
	var fp, err = os.Create(path)
	if err != nil {
		return fmt.Errorf("adc capture: %w", err)
	}
	defer fp.Close()

	var start = io.now_us()
	for {
		var val = io.read_adc()
		var elapsed_ms = float64(io.now_us()-start) / 1000
		if elapsed_ms >= duration_ms {
			break
		}
		fmt.Fprintf(fp, "%f\t%f\n", elapsed_ms, val)
	}

	return nil
}

// Average of n consecutive samples, for the slow human-readable mode.
func adc_read_average(io light_io, n int) float32 {
	var val float32
	for i := 0; i < n; i++ {
		val += io.read_adc()
	}
	return val / float32(n)
}
