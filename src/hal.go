package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	The four hardware operations everything else is
 *		built from.
 *
 * Description:	All of the modem timing is expressed against now_us,
 *		a monotonic microsecond counter that is allowed to
 *		wrap: intervals are always computed with unsigned
 *		subtraction so the wrap cancels out.
 *
 *		The interface exists so the whole link layer can run
 *		against a simulated medium in the tests.  On real
 *		hardware rpi_io_s is the only implementation.
 *
 *------------------------------------------------------------------*/

import (
	"time"

	"periph.io/x/host/v3"
)

type light_io interface {
	now_us() uint32
	delay_us(d uint32)
	set_led(on bool)
	read_adc() float32
}

/*
 * Raspberry Pi implementation: LED on a GPIO line, photodiode on the
 * SPI ADC, clock from the runtime's monotonic source.
 */

type rpi_io_s struct {
	led   *led_line_s
	adc   *mcp3002_s
	epoch time.Time
}

/* Sleeping this close to the deadline risks oversleeping past it, so
   the remainder is spun.  Worth one core; the symbol edges depend on it. */

const delay_spin_slack_us = 200

func rpi_io_open(p *config_s) (*rpi_io_s, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	var led, ledErr = led_open(p.led_chip, p.led_line)
	if ledErr != nil {
		return nil, ledErr
	}

	var adc, adcErr = adc_open(p.spi_dev, p.adc_channel)
	if adcErr != nil {
		led.close()
		return nil, adcErr
	}

	return &rpi_io_s{
		led:   led,
		adc:   adc,
		epoch: time.Now(),
	}, nil
}

func (io *rpi_io_s) now_us() uint32 {
	return uint32(time.Since(io.epoch).Microseconds())
}

func (io *rpi_io_s) delay_us(d uint32) {
	var deadline = io.now_us() + d

	if d > delay_spin_slack_us {
		time.Sleep(time.Duration(d-delay_spin_slack_us) * time.Microsecond)
	}

	for io.now_us()-deadline >= 1<<31 { // deadline still ahead, mod 2^32
	}
}

// ADC only, for the diagnostic tool.  No GPIO permissions needed and
// set_led quietly does nothing.
func adc_io_open(p *config_s) (*rpi_io_s, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	var adc, adcErr = adc_open(p.spi_dev, p.adc_channel)
	if adcErr != nil {
		return nil, adcErr
	}

	return &rpi_io_s{
		adc:   adc,
		epoch: time.Now(),
	}, nil
}

func (io *rpi_io_s) set_led(on bool) {
	if io.led != nil {
		io.led.set(on)
	}
}

func (io *rpi_io_s) read_adc() float32 {
	return io.adc.read()
}

func (io *rpi_io_s) close() {
	if io.led != nil {
		io.led.close()
	}
	io.adc.close()
}
