//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"errors"
	"net"
	"time"
)

// ErrTransportTimeout means the server did not reply in time.
var ErrTransportTimeout = errors.New("dns request timed out")

// maxResponseSize is the receive buffer size for one response datagram.
const maxResponseSize = 4096

// UDPTransport implements [Transport] over connectionless UDP: one
// fresh socket per query, one datagram each direction.
type UDPTransport struct{}

var _ Transport = &UDPTransport{}

// SendQuery sends query to the server and waits up to timeout for the
// reply datagram.
//
// The server may be an address literal or a hostname: nameserver names
// from referrals are passed through as-is and the dialer resolves
// them. Port 53 is assumed unless the server already carries a port.
func (*UDPTransport) SendQuery(server string, query []byte, timeout time.Duration) ([]byte, error) {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	conn, err := net.DialTimeout("udp", server, timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write(query); err != nil {
		return nil, err
	}

	buf := make([]byte, maxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrTransportTimeout
		}
		return nil, err
	}
	return buf[:n], nil
}
