package firefly

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the TCP service using DNS-SD.
 *
 * Description:	Anyone pointing a client at the link shouldn't need
 *		to know which node has which address on which port.
 *		The pure-Go github.com/brutella/dnssd package does
 *		mDNS/DNS-SD announcement without a system daemon or C
 *		library dependencies.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"

	"github.com/brutella/dnssd"
)

const DNS_SD_SERVICE = "_firefly-tnc._tcp"

func dns_sd_announce(name string, node_id byte, port int) {
	if name == "" {
		var hostname, _ = os.Hostname()
		if hostname == "" {
			hostname = "Firefly"
		}
		name = fmt.Sprintf("%s node %d", hostname, node_id)
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("DNS-SD: Failed to create service: %v\n", svErr)

		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("DNS-SD: Failed to create responder: %v\n", rpErr)

		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		text_color_set(DW_COLOR_ERROR)
		dw_printf("DNS-SD: Failed to add service: %v\n", addErr)

		return
	}

	text_color_set(DW_COLOR_INFO)
	dw_printf("DNS-SD: Announcing firefly TCP on port %d as '%s'\n", port, name)

	go func() {
		var respondErr = rp.Respond(context.Background())
		if respondErr != nil {
			text_color_set(DW_COLOR_ERROR)
			dw_printf("DNS-SD: Responder error: %v\n", respondErr)
		}
	}()
}
