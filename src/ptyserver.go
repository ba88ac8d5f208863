package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Same application service as the TCP socket, on a
 *		pseudo terminal.
 *
 * Description:	Some client programs only know how to open a serial
 *		device.  A pty gives them one: we hold the control
 *		side, they open the printed /dev/pts/N as if a real
 *		TNC were wired to it, and the line protocol is
 *		identical to the TCP one.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/creack/pty"
)

type pty_server_s struct {
	modem *modem_s

	mutex sync.Mutex
	ptmx  *os.File
	tty   *os.File
}

func pty_server_init(m *modem_s) (*pty_server_s, error) {
	var ptmx, tty, err = pty.Open()
	if err != nil {
		return nil, fmt.Errorf("pty: %w", err)
	}

	var s = &pty_server_s{
		modem: m,
		ptmx:  ptmx,
		tty:   tty,
	}
	m.ptysrv = s

	text_color_set(DW_COLOR_INFO)
	dw_printf("Virtual TNC is available on %s\n", tty.Name())

	go s.serve_loop()

	return s, nil
}

func (s *pty_server_s) serve_loop() {
	var scanner = bufio.NewScanner(s.ptmx)
	for scanner.Scan() {
		var reply = serve_command(s.modem, scanner.Text())

		s.mutex.Lock()
		fmt.Fprintf(s.ptmx, "%s\r\n", reply)
		s.mutex.Unlock()
	}
}

func (s *pty_server_s) broadcast_msg(msg *rx_msg_s) {
	if s == nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	fmt.Fprintf(s.ptmx, "MSG %d %d %s\r\n", msg.from, msg.to, printable_payload(msg.payload))
}

func (s *pty_server_s) shutdown() {
	if s == nil {
		return
	}

	s.ptmx.Close()
	s.tty.Close()
}
