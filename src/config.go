package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Read the configuration file and fill in the
 *		configuration structure used by everything else.
 *
 * Description:	The original used a pile of compile-time defines.
 *		Here the node identity, the hardware attachment points,
 *		and all the modulation timing live in one structure
 *		which is filled from firefly.yaml, validated, and then
 *		treated as immutable.  Anything not mentioned in the
 *		file keeps its default.
 *
 *		The derived periods (symbol, beacon, packet, backoff)
 *		are computed once in config_finalize so the timing
 *		loops never do this arithmetic themselves.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type config_s struct {
	my_id byte /* 0..14.  15 is broadcast. */

	/* Hardware attachment. */

	led_chip    string /* gpiochip name, e.g. "gpiochip0" */
	led_line    int    /* GPIO line offset driving the LED */
	spi_dev     string /* SPI port name for spireg.Open.  "" = first registered. */
	adc_channel int    /* ADC input the photodiode amplifier feeds */

	/* Modulation timing.  Defaults match the deployed hardware. */

	sample_period_us uint32
	ppm_bits         int
	ppm_slot_us      uint32
	max_msg_size     int

	/* Application services. */

	log_path    string /* CSV log file, or directory when log_daily */
	log_daily   bool
	server_port int    /* TCP app service, 0 = disabled */
	dns_sd_name string /* service instance name, "" = hostname based */
	enable_pty  bool

	rng_seed int64 /* 0 = seed from the clock */

	realtime bool /* SCHED_FIFO + mlockall for the link threads */

	/* Derived.  Filled by config_finalize, never set directly. */

	ppm_slot_count   int
	symbols_per_byte int
	ppm_period_us    uint32
	beacon_period_us uint32
	slow_sensing_us  uint32
	packet_period_us uint32
	backoff_low_us   uint32
	backoff_range_us uint32
}

func default_config() config_s {
	return config_s{
		my_id:            0,
		led_chip:         "gpiochip0",
		led_line:         25,
		spi_dev:          "",
		adc_channel:      0,
		sample_period_us: SAMPLE_PERIOD_US,
		ppm_bits:         DEFAULT_PPM_BITS,
		ppm_slot_us:      DEFAULT_PPM_SLOT_US,
		max_msg_size:     DEFAULT_MAX_MSG_SIZE,
		log_path:         "",
		log_daily:        false,
		server_port:      0,
		dns_sd_name:      "",
		enable_pty:       false,
		rng_seed:         0,
		realtime:         true,
	}
}

// Wire format of firefly.yaml.  Kept separate from config_s so the
// rest of the package is not coupled to struct tags.
type config_file_s struct {
	MyID       *int   `yaml:"my_id"`
	LedChip    string `yaml:"led_chip"`
	LedLine    *int   `yaml:"led_line"`
	SpiDev     string `yaml:"spi_dev"`
	AdcChannel *int   `yaml:"adc_channel"`

	SamplePeriodUS *uint32 `yaml:"sample_period_us"`
	PpmBits        *int    `yaml:"ppm_bits"`
	PpmSlotUS      *uint32 `yaml:"ppm_slot_us"`
	MaxMsgSize     *int    `yaml:"max_msg_size"`

	LogPath    string `yaml:"log_path"`
	LogDaily   *bool  `yaml:"log_daily"`
	ServerPort *int   `yaml:"server_port"`
	DnsSdName  string `yaml:"dns_sd_name"`
	EnablePty  *bool  `yaml:"enable_pty"`

	RngSeed  *int64 `yaml:"rng_seed"`
	Realtime *bool  `yaml:"realtime"`
}

/*-------------------------------------------------------------------
 *
 * Name:        config_load
 *
 * Purpose:     Read firefly.yaml on top of the defaults.
 *
 * Inputs:	path		- Configuration file name.
 *				  Empty string means defaults only.
 *
 * Returns:	Validated configuration with derived values filled in,
 *		or an error for a missing/bad file or invalid values.
 *
 *--------------------------------------------------------------------*/

func config_load(path string) (config_s, error) {
	var p = default_config()

	if path != "" {
		var data, readErr = os.ReadFile(path)
		if readErr != nil {
			return p, fmt.Errorf("config: %w", readErr)
		}

		var cf config_file_s
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return p, fmt.Errorf("config: parsing %s: %w", path, err)
		}

		if cf.MyID != nil {
			if *cf.MyID < 0 || *cf.MyID >= int(BROADCAST_ADDR) {
				return p, fmt.Errorf("config: my_id %d out of range 0..%d", *cf.MyID, BROADCAST_ADDR-1)
			}
			p.my_id = byte(*cf.MyID)
		}
		if cf.LedChip != "" {
			p.led_chip = cf.LedChip
		}
		if cf.LedLine != nil {
			p.led_line = *cf.LedLine
		}
		if cf.SpiDev != "" {
			p.spi_dev = cf.SpiDev
		}
		if cf.AdcChannel != nil {
			p.adc_channel = *cf.AdcChannel
		}
		if cf.SamplePeriodUS != nil {
			p.sample_period_us = *cf.SamplePeriodUS
		}
		if cf.PpmBits != nil {
			p.ppm_bits = *cf.PpmBits
		}
		if cf.PpmSlotUS != nil {
			p.ppm_slot_us = *cf.PpmSlotUS
		}
		if cf.MaxMsgSize != nil {
			p.max_msg_size = *cf.MaxMsgSize
		}
		p.log_path = cf.LogPath
		if cf.LogDaily != nil {
			p.log_daily = *cf.LogDaily
		}
		if cf.ServerPort != nil {
			p.server_port = *cf.ServerPort
		}
		p.dns_sd_name = cf.DnsSdName
		if cf.EnablePty != nil {
			p.enable_pty = *cf.EnablePty
		}
		if cf.RngSeed != nil {
			p.rng_seed = *cf.RngSeed
		}
		if cf.Realtime != nil {
			p.realtime = *cf.Realtime
		}
	}

	if err := config_finalize(&p); err != nil {
		return p, err
	}

	return p, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        config_finalize
 *
 * Purpose:     Validate the tunables and compute every derived period.
 *
 * Description:	PPM_BITS must divide a byte evenly and the slot count
 *		is 2^PPM_BITS, so only 1, 2, 4, 8 make sense.  The
 *		length field is 7 bits wide (the top bit carries the
 *		ack request) which caps max_msg_size at 127.
 *
 *--------------------------------------------------------------------*/

func config_finalize(p *config_s) error {
	switch p.ppm_bits {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("config: ppm_bits must be 1, 2, 4 or 8, not %d", p.ppm_bits)
	}

	if p.sample_period_us == 0 {
		return fmt.Errorf("config: sample_period_us must be positive")
	}
	if p.ppm_slot_us < 2*p.sample_period_us {
		return fmt.Errorf("config: ppm_slot_us %d leaves fewer than 2 samples per slot", p.ppm_slot_us)
	}
	if p.max_msg_size < 1 || p.max_msg_size > 127 {
		return fmt.Errorf("config: max_msg_size %d out of range 1..127", p.max_msg_size)
	}
	if p.my_id >= BROADCAST_ADDR {
		return fmt.Errorf("config: my_id %d collides with the broadcast address", p.my_id)
	}

	p.ppm_slot_count = 1 << p.ppm_bits
	p.symbols_per_byte = 8 / p.ppm_bits
	p.ppm_period_us = p.ppm_slot_us * uint32(p.ppm_slot_count)
	p.beacon_period_us = 4 * p.ppm_period_us
	p.slow_sensing_us = p.beacon_period_us
	p.packet_period_us = uint32(p.symbols_per_byte) * p.ppm_period_us * uint32(p.max_msg_size+FRAME_OVERHEAD)
	p.backoff_low_us = p.packet_period_us
	p.backoff_range_us = 4 * p.packet_period_us

	return nil
}
