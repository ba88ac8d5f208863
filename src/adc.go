package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Read the photodiode through an MCP3002 ADC on the
 *		SPI bus.
 *
 * Description:	Each conversion is one 2-byte full-duplex exchange.
 *		The command byte carries a start bit, single-ended
 *		mode, the channel select and the MSB-first flag; the
 *		ten result bits come back straddling both bytes with
 *		one trailing pad bit, hence the shift by one at the
 *		end.
 *
 *		A failed exchange returns a sentinel well below zero
 *		volts.  The sampling loops treat that the same as
 *		darkness, which is the safe direction for both carrier
 *		sensing and symbol detection.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

const adc_spi_clock = 1200 * physic.KiloHertz

const adc_resolution = 10 // bits

const ADC_READ_FAILED = -2 * ADC_V_REF /* sentinel, never a real voltage */

const (
	adc_logic_high  = 1
	adc_single_mode = 1
	adc_msb_first   = 0
)

type mcp3002_s struct {
	port    spi.PortCloser
	conn    spi.Conn
	command byte /* precomputed so the sample path does no bit math */
}

/*-------------------------------------------------------------------
 *
 * Name:        adc_open
 *
 * Purpose:     Open the SPI port and latch the conversion command
 *		for the configured channel.
 *
 * Inputs:	spi_dev		- Port name for spireg.  "" picks the
 *				  first registered port.
 *
 *		channel		- ADC input, 0 or 1.
 *
 *--------------------------------------------------------------------*/

func adc_open(spi_dev string, channel int) (*mcp3002_s, error) {
	if channel < 0 || channel > 1 {
		return nil, fmt.Errorf("adc: channel %d out of range 0..1", channel)
	}

	var port, openErr = spireg.Open(spi_dev)
	if openErr != nil {
		return nil, fmt.Errorf("adc: opening SPI port %q: %w", spi_dev, openErr)
	}

	var conn, connErr = port.Connect(adc_spi_clock, spi.Mode0, 8)
	if connErr != nil {
		port.Close()
		return nil, fmt.Errorf("adc: connecting: %w", connErr)
	}

	var a = &mcp3002_s{
		port: port,
		conn: conn,
		command: byte((adc_logic_high << 7) | (adc_single_mode << 6) |
			(channel << 5) | (adc_msb_first << 4)),
	}

	return a, nil
}

func (a *mcp3002_s) read() float32 {
	var w = [2]byte{a.command, 0}
	var r [2]byte

	if err := a.conn.Tx(w[:], r[:]); err != nil {
		return ADC_READ_FAILED
	}

	var value = ((int(r[0]) << 8) | int(r[1])) >> 1

	return ADC_V_REF * float32(value) / (1 << adc_resolution)
}

func (a *mcp3002_s) close() {
	_ = a.port.Close()
}
