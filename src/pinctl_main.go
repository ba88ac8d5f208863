package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Turn a GPIO line on or off from the command line, to
 *		make sure the hardware connections are sound before
 *		blaming the software.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func PinCtlMain() {
	var chip = pflag.StringP("chip", "C", "gpiochip0", "GPIO character device name.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <line #> HIGH|LOW\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if len(pflag.Args()) != 2 {
		pflag.Usage()
		os.Exit(1)
	}

	var line, lineErr = strconv.Atoi(pflag.Arg(0))
	if lineErr != nil || line < 0 {
		clog.Fatal("bad line number", "line", pflag.Arg(0))
	}

	var on = pflag.Arg(1) == "HIGH" || pflag.Arg(1) == "1"

	if err := gpio_write_once(*chip, line, on); err != nil {
		clog.Fatal("write failed", "err", err)
	}
}
