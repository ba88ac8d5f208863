package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Helper program for debugging the receive hardware.
 *
 * Description:	Three modes:
 *
 *		read	- print a smoothed voltage ten times a second.
 *		write	- dump timestamped raw samples to a file for a
 *			  while, so a transmission can be decoded by
 *			  hand and the slot timing checked by eye.
 *		stats	- measure the achievable sample rate.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func AdcToolMain() {
	var spiDev = pflag.StringP("spi-dev", "s", "", "SPI port name.  Empty picks the first registered port.")
	var adcChannel = pflag.IntP("adc-channel", "a", 0, "ADC input, 0 or 1.")
	var outFile = pflag.StringP("out", "o", "data.txt", "Output file for write mode.")
	var writeDur = pflag.Float64P("duration-ms", "d", 5000, "Capture duration for write mode, milliseconds.")
	var sampleCount = pflag.IntP("samples", "n", 100000, "Samples per measurement for stats mode.")

	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] read|write|stats\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help || len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(IfThenElse(*help, 0, 1))
	}

	var mode = pflag.Arg(0)

	if *writeDur <= 0 || *writeDur >= 10*60*1000 {
		clog.Fatal("duration out of range", "duration_ms", *writeDur)
	}
	if *sampleCount <= 0 || *sampleCount >= 100_000_000 {
		clog.Fatal("sample count out of range", "samples", *sampleCount)
	}

	var p = default_config()
	p.spi_dev = *spiDev
	p.adc_channel = *adcChannel

	var io, ioErr = adc_io_open(&p)
	if ioErr != nil {
		clog.Fatal("failed to initialize the ADC", "err", ioErr)
	}
	defer io.close()

	switch mode {
	case "stats":
		adc_rate_stats(io, *sampleCount, 8)

	case "write":
		if err := adc_log_voltage(io, *outFile, *writeDur); err != nil {
			clog.Fatal("capture failed", "err", err)
		}
		clog.Info("capture written", "file", *outFile, "duration_ms", *writeDur)

	case "read":
		for {
			dw_printf("%.4f\n", adc_read_average(io, 10))
			SLEEP_MS(100) // print at 10hz-ish
		}

	default:
		pflag.Usage()
		os.Exit(1)
	}
}
