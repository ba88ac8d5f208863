package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the firefly visible-light TNC:
 *
 *			PPM modem over an LED and a photodiode.
 *			Carrier-sense link layer with ack and
 *			randomized backoff.
 *			Interactive operator prompt.
 *			TCP and pseudo-terminal client services.
 *			CSV logging of received frames.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

func FireflyMain() {
	var nodeID = pflag.IntP("node-id", "i", -1, "Node address 0..14.  Overrides the configuration file.")
	var configFileName = pflag.StringP("config-file", "c", "firefly.yaml", "Configuration file name.")
	var textColor = pflag.IntP("text-color", "t", 1, "Text colors.  0=disabled.  1=enabled.")
	var logDir = pflag.StringP("log-dir", "l", "", "Directory name for daily log files.")
	var logFile = pflag.StringP("log-file", "L", "", "File name for logging.")
	var serverPort = pflag.IntP("server-port", "P", 0, "TCP port for client applications.  0 to disable.  Overrides the configuration file.")
	var enablePty = pflag.BoolP("enable-ptty", "p", false, "Enable pseudo terminal for client applications.")
	var showVersion = pflag.BoolP("version", "v", false, "Print version and exit.")

	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - a visible-light modem/TNC.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: firefly [options]\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	text_color_init(*textColor)

	if *showVersion {
		printVersion()
		return
	}

	/*
	 * Configuration.  A missing file is only an error when the
	 * operator named one explicitly.
	 */

	var config_path = *configFileName
	if !pflag.CommandLine.Changed("config-file") {
		if _, err := os.Stat(config_path); err != nil {
			config_path = ""
		}
	}

	var p, configErr = config_load(config_path)
	if configErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("%s\n", configErr)
		os.Exit(1)
	}

	if *nodeID >= 0 {
		if *nodeID >= int(BROADCAST_ADDR) {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("Node address must be 0..%d.\n", BROADCAST_ADDR-1)
			os.Exit(1)
		}
		p.my_id = byte(*nodeID)
	}
	if *serverPort != 0 {
		p.server_port = *serverPort
	}
	if *enablePty {
		p.enable_pty = true
	}

	text_color_set(DW_COLOR_INFO)
	dw_printf("Config:\n")
	dw_printf("Node address: %d\n", p.my_id)
	dw_printf("Beacon Period: %d us\n", p.beacon_period_us)
	dw_printf("PPM Period: %d us\n", p.ppm_period_us)
	dw_printf("PPM %d bits\n", p.ppm_bits)
	dw_printf("Packet max period: %d us\n", p.packet_period_us)

	/*
	 * Hardware and calibration.  The LED must be off and the room
	 * in its normal state while the noise floor is measured.
	 */

	var io, ioErr = rpi_io_open(&p)
	if ioErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("PI setup failed: %s\n", ioErr)
		os.Exit(1)
	}
	defer io.close()

	var m, modemErr = modem_init(p, io)
	if modemErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("%s\n", modemErr)
		os.Exit(1)
	}

	dw_printf("Measuring the idle channel (about 2 seconds)...\n")

	var cal, calErr = m.calibrate()
	if calErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("Calibration failed: %s\n", calErr)
		os.Exit(1)
	}

	dw_printf("mean low value: %.3fv\n", cal.mean)
	dw_printf("stddev value: %.3fv\n", cal.stddev)
	dw_printf("high cutoff is therefore %.3fv\n", cal.high_cutoff)

	/*
	 * Services, then the receive thread, then the prompt.
	 */

	var log_path = p.log_path
	var log_daily = p.log_daily
	if *logDir != "" {
		log_path, log_daily = *logDir, true
	}
	if *logFile != "" {
		log_path, log_daily = *logFile, false
	}

	var flog, logErr = log_init(log_daily, log_path)
	if logErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("%s\n", logErr)
		os.Exit(1)
	}
	m.flog = flog
	defer flog.log_term()

	m.start_receiver(nil)
	defer m.stop()

	if p.server_port != 0 {
		var srv, srvErr = server_init(m, p.server_port)
		if srvErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("%s\n", srvErr)
			os.Exit(1)
		}
		defer srv.shutdown()

		dns_sd_announce(p.dns_sd_name, p.my_id, p.server_port)
	}

	if p.enable_pty {
		var psrv, ptyErr = pty_server_init(m)
		if ptyErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("%s\n", ptyErr)
			os.Exit(1)
		}
		defer psrv.shutdown()
	}

	prompt_loop(m)
}

/*-------------------------------------------------------------------
 *
 * Name:        prompt_loop
 *
 * Purpose:     Interactive sending until "quit" or "exit".
 *
 *--------------------------------------------------------------------*/

func prompt_loop(m *modem_s) {
	var stdin = bufio.NewScanner(os.Stdin)

	for {
		dw_printf("Type an address to send to: ")
		if !stdin.Scan() {
			return
		}
		var addr_text = strings.TrimSpace(stdin.Text())
		if addr_text == "quit" || addr_text == "exit" {
			return
		}

		var send_addr, addrErr = strconv.Atoi(addr_text)
		if addrErr != nil || send_addr < 0 || send_addr > int(BROADCAST_ADDR) {
			dw_printf("invalid address. Please try again.\n")
			continue
		}

		dw_printf("Type a message to send: ")
		if !stdin.Scan() {
			return
		}
		var msg = stdin.Text()

		dw_printf("Attempting to send \"%s\" (%d->%d)...\n", msg, m.p.my_id, send_addr)
		if len(msg) >= m.p.max_msg_size {
			dw_printf("FAIL: msg must be < %d chars\n", m.p.max_msg_size)
			continue
		}

		var result = m.send([]byte(msg), byte(send_addr), true)
		if result == 0 {
			dw_printf("NO ACK\n")
		} else {
			for i := 0; i < int(BROADCAST_ADDR); i++ {
				if result&(1<<i) != 0 {
					dw_printf("We got an ack from %d\n", i)
				}
			}
		}
	}
}
