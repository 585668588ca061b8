package csftp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// DataEndpoint is the address a passive-mode reply designates for one data connection.
type DataEndpoint struct {
	Host string
	Port int
}

// Addr returns the endpoint in "host:port" form.
func (e DataEndpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// parsePASV extracts the endpoint from a PASV reply message.
// Example: "Entering Passive Mode (192,168,1,1,195,149)"
// Returns: 192.168.1.1, port 50069 (195*256 + 149)
func parsePASV(message string) (DataEndpoint, error) {
	start := strings.IndexByte(message, '(')
	if start < 0 {
		return DataEndpoint{}, fmt.Errorf("invalid PASV response: %s", message)
	}
	end := strings.IndexByte(message[start:], ')')
	if end < 0 {
		return DataEndpoint{}, fmt.Errorf("invalid PASV response: %s", message)
	}

	tokens := strings.Split(message[start+1:start+end], ",")
	if len(tokens) != 6 {
		return DataEndpoint{}, fmt.Errorf("invalid PASV response: want 6 numbers, got %d", len(tokens))
	}

	var parts [6]int
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		val, err := strconv.Atoi(tok)
		if err != nil || tok[0] < '0' || tok[0] > '9' || val > 255 {
			return DataEndpoint{}, fmt.Errorf("invalid PASV number: %q", tok)
		}
		parts[i] = val
	}

	return DataEndpoint{
		Host: fmt.Sprintf("%d.%d.%d.%d", parts[0], parts[1], parts[2], parts[3]),
		Port: parts[4]*256 + parts[5],
	}, nil
}

// resolve replaces an unspecified 0.0.0.0 host with the control connection host.
func (e DataEndpoint) resolve(controlHost string) DataEndpoint {
	if e.Host == "0.0.0.0" {
		e.Host = controlHost
	}
	return e
}

// openDataConn switches the server to passive mode and connects to the
// endpoint it designates. Only the dial is bounded by the data timeout.
func (s *Session) openDataConn() (net.Conn, error) {
	resp, err := s.sendCommand("PASV")
	if err != nil {
		return nil, err
	}
	if resp.Code != 227 {
		return nil, statusError("PASV", resp)
	}

	endpoint, err := parsePASV(resp.Message)
	if err != nil {
		return nil, &Error{Kind: KindDataConnect, Command: "PASV", Message: resp.Message, Err: err}
	}
	endpoint = endpoint.resolve(s.host)

	dialer := *s.dialer
	dialer.Timeout = s.dataTimeout

	s.logger.Debug("opening data connection", "addr", endpoint.Addr(), "timeout", s.dataTimeout)
	conn, err := dialer.Dial("tcp", endpoint.Addr())
	if err != nil {
		return nil, &Error{
			Kind:    KindDataConnect,
			Command: "PASV",
			Host:    endpoint.Host,
			Port:    endpoint.Port,
			Err:     err,
		}
	}
	return conn, nil
}

// finishTransfer reads the completion reply of a listing or download. The
// data connection must already be closed or drained.
func (s *Session) finishTransfer(command string) (*Response, error) {
	resp, err := s.nextResponse()
	if err != nil {
		return nil, withCommand(err, command)
	}

	s.logger.Debug("ftp data transfer complete", "code", resp.Code, "message", resp.Message)

	switch resp.Code {
	case 226, 250:
		return resp, nil
	case 425, 426, 451:
		return resp, &Error{Kind: KindDataIO, Command: command, Code: resp.Code, Message: resp.Message}
	default:
		return resp, statusError(command, resp)
	}
}
