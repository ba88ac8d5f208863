package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Provide service to other applications via a TCP
 *		socket.
 *
 * Description:	A plain line protocol, one message per line, so that
 *		netcat is a perfectly good client.
 *
 *		Commands from the application:
 *
 *			SEND <to> A|N <text>
 *				Transmit <text> to node <to> (15 for
 *				broadcast).  A requests an ack, N does
 *				not.
 *
 *		Replies and unsolicited lines to the application:
 *
 *			ACK <bitmap>	- hex bitmap of acking nodes
 *			NOACK		- window closed empty
 *			SENT		- done, no ack was requested
 *			MSG <from> <to> <text>
 *					- frame delivered to this node
 *			ERR <reason>
 *
 *		Every connected client gets every MSG line.  Send
 *		serialization happens in the modem, so two clients
 *		transmitting at once simply take turns.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	clog "github.com/charmbracelet/log"
)

// TCP clients only.  The pty service always has exactly one.
const MAX_NET_CLIENTS = 3

type app_server_s struct {
	modem    *modem_s
	listener net.Listener
	logger   *clog.Logger

	mutex   sync.Mutex
	clients [MAX_NET_CLIENTS]net.Conn
}

/*-------------------------------------------------------------------
 *
 * Name:        server_init
 *
 * Purpose:     Start listening and accept client connections.
 *
 * Inputs:	m	- The modem whose link the clients use.
 *
 *		port	- TCP port.
 *
 *--------------------------------------------------------------------*/

func server_init(m *modem_s, port int) (*app_server_s, error) {
	var listener, err = net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	var s = &app_server_s{
		modem:    m,
		listener: listener,
		logger:   clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "server"}),
	}
	m.srv = s

	text_color_set(DW_COLOR_INFO)
	dw_printf("Ready to accept client application on port %d ...\n", port)

	go s.accept_loop()

	return s, nil
}

func (s *app_server_s) accept_loop() {
	for {
		var conn, err = s.listener.Accept()
		if err != nil {
			return // listener closed
		}

		var slot = -1
		s.mutex.Lock()
		for i := range s.clients {
			if s.clients[i] == nil {
				s.clients[i] = conn
				slot = i
				break
			}
		}
		s.mutex.Unlock()

		if slot < 0 {
			s.logger.Warn("rejecting client, all slots in use", "remote", conn.RemoteAddr())
			fmt.Fprintf(conn, "ERR too many clients\n")
			conn.Close()
			continue
		}

		s.logger.Info("client connected", "remote", conn.RemoteAddr(), "slot", slot)
		go s.client_loop(conn, slot)
	}
}

func (s *app_server_s) client_loop(conn net.Conn, slot int) {
	defer func() {
		s.mutex.Lock()
		s.clients[slot] = nil
		s.mutex.Unlock()
		conn.Close()
		s.logger.Info("client disconnected", "slot", slot)
	}()

	var scanner = bufio.NewScanner(conn)
	for scanner.Scan() {
		var reply = serve_command(s.modem, scanner.Text())
		if _, err := fmt.Fprintf(conn, "%s\n", reply); err != nil {
			return
		}
	}
}

// One command in, one reply line out.  Shared with the pty service.
func serve_command(m *modem_s, line string) string {
	var fields = strings.SplitN(strings.TrimRight(line, "\r\n"), " ", 4)

	if len(fields) == 0 || fields[0] == "" {
		return "ERR empty command"
	}

	switch strings.ToUpper(fields[0]) {
	case "SEND":
		if len(fields) < 4 {
			return "ERR usage: SEND <to> A|N <text>"
		}

		var to, toErr = strconv.Atoi(fields[1])
		if toErr != nil || to < 0 || to >= MAX_NODES {
			return fmt.Sprintf("ERR bad address %q", fields[1])
		}

		var ack_requested bool
		switch strings.ToUpper(fields[2]) {
		case "A":
			ack_requested = true
		case "N":
			ack_requested = false
		default:
			return fmt.Sprintf("ERR bad ack flag %q", fields[2])
		}

		var payload = []byte(fields[3])
		if len(payload) >= m.p.max_msg_size {
			return fmt.Sprintf("ERR message longer than %d bytes", m.p.max_msg_size-1)
		}

		var bitmap = m.send(payload, byte(to), ack_requested)

		switch {
		case !ack_requested:
			return "SENT"
		case bitmap == 0:
			return "NOACK"
		default:
			return fmt.Sprintf("ACK %04X", bitmap)
		}

	default:
		return fmt.Sprintf("ERR unknown command %q", fields[0])
	}
}

func (s *app_server_s) broadcast_msg(msg *rx_msg_s) {
	if s == nil {
		return
	}

	var line = fmt.Sprintf("MSG %d %d %s\n", msg.from, msg.to, printable_payload(msg.payload))

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, conn := range s.clients {
		if conn != nil {
			fmt.Fprint(conn, line)
		}
	}
}

func (s *app_server_s) shutdown() {
	if s == nil {
		return
	}

	s.listener.Close()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for i, conn := range s.clients {
		if conn != nil {
			conn.Close()
			s.clients[i] = nil
		}
	}
}
