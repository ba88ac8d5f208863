package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Drive the transmit LED through the Linux GPIO
 *		character device.
 *
 * Description:	The old /sys/class/gpio export dance is gone from
 *		recent kernels.  The gpiocdev interface hands us the
 *		line directly and releases it cleanly on exit.
 *
 *		set is called from inside the PPM timing loop so it
 *		must stay a straight ioctl with no allocation.  Errors
 *		there are ignored: if the line dies mid frame there is
 *		nothing useful to do about it at that point, and the
 *		receiver's postamble check will reject the wreckage.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

type led_line_s struct {
	line *gpiocdev.Line
}

func led_open(chip string, offset int) (*led_line_s, error) {
	var line, err = gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("firefly-led"))
	if err != nil {
		return nil, fmt.Errorf("gpio: requesting %s line %d: %w", chip, offset, err)
	}

	return &led_line_s{line: line}, nil
}

func (l *led_line_s) set(on bool) {
	var v = 0
	if on {
		v = 1
	}
	_ = l.line.SetValue(v)
}

func (l *led_line_s) close() {
	l.set(false)
	_ = l.line.Close()
}

// One-shot write for the pinctl helper.  Requests the line, sets it,
// lets the kernel keep the value on release.
func gpio_write_once(chip string, offset int, on bool) error {
	var v = 0
	if on {
		v = 1
	}

	var line, err = gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(v),
		gpiocdev.WithConsumer("firefly-pinctl"))
	if err != nil {
		return fmt.Errorf("gpio: requesting %s line %d: %w", chip, offset, err)
	}

	return line.Close()
}
