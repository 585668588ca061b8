package csftp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Response represents an FTP server response.
type Response struct {
	// Code is the three-digit response code (e.g., 220, 550)
	Code int

	// Message is the text of the final line, after the code
	Message string

	// Lines contains all physical lines of the response, in order
	Lines []string
}

// String returns the full response as a string.
func (r *Response) String() string {
	return strings.Join(r.Lines, "\n")
}

// formatError is a reply line that does not follow "ddd text" or "ddd-text".
type formatError struct {
	line   string
	reason string
}

func (e *formatError) Error() string {
	return fmt.Sprintf("%s: %q", e.reason, e.line)
}

// parseReplyLine splits a reply line into its code, its separator (' ' or '-')
// and the message after the first run of whitespace.
func parseReplyLine(line string) (code int, sep byte, message string, err error) {
	if len(line) < 4 {
		return 0, 0, "", &formatError{line: line, reason: "reply line too short"}
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return 0, 0, "", &formatError{line: line, reason: "invalid reply code"}
		}
	}
	sep = line[3]
	if sep != ' ' && sep != '-' {
		return 0, 0, "", &formatError{line: line, reason: "invalid reply separator"}
	}
	code, _ = strconv.Atoi(line[:3])
	return code, sep, strings.TrimLeft(line[4:], " \t"), nil
}

// readLine reads one physical line and strips the line terminator.
// A final line without a terminator is returned only if it is non-empty.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readResponse reads a complete FTP response from the reader, handing every
// physical line to echo as soon as it is read.
//
// Single-line format: "220 Welcome\r\n"
// Multi-line format:
//
//	"250-Welcome to FTP\r\n"
//	"This line is free text\r\n"
//	"250 Ready\r\n"
//
// The response is complete when a line starts with the opening code followed
// by a space. Lines in between are not interpreted.
func readResponse(r *bufio.Reader, echo func(string)) (*Response, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	echo(line)

	code, sep, message, err := parseReplyLine(line)
	if err != nil {
		return nil, err
	}

	lines := []string{line}
	if sep == ' ' {
		return &Response{Code: code, Message: message, Lines: lines}, nil
	}

	terminator := line[:3] + " "
	for {
		line, err = readLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		echo(line)
		lines = append(lines, line)

		if strings.HasPrefix(line, terminator) {
			_, _, message, _ = parseReplyLine(line)
			return &Response{Code: code, Message: message, Lines: lines}, nil
		}
	}
}

// send writes one command line to the control connection.
func (s *Session) send(line string) error {
	if !s.connected {
		return &Error{Kind: KindControlIO, Err: errNotConnected}
	}

	s.transcript.Sent(line)
	s.logger.Debug("ftp command", "cmd", maskCommand(line))

	if _, err := fmt.Fprintf(s.conn, "%s\r\n", line); err != nil {
		s.abort()
		return &Error{Kind: KindControlIO, Err: fmt.Errorf("failed to send command: %w", err)}
	}
	return nil
}

// nextResponse reads exactly one logical response from the control connection.
func (s *Session) nextResponse() (*Response, error) {
	if !s.connected {
		return nil, &Error{Kind: KindControlIO, Err: errNotConnected}
	}

	resp, err := readResponse(s.reader, s.transcript.Received)
	if err != nil {
		s.abort()
		var fe *formatError
		if errors.As(err, &fe) {
			return nil, &Error{Kind: KindMalformedReply, Message: fe.line, Err: err}
		}
		return nil, &Error{Kind: KindControlIO, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	s.logger.Debug("ftp response", "code", resp.Code, "message", resp.Message)
	return resp, nil
}

// sendCommand sends an FTP command and returns the response.
func (s *Session) sendCommand(command string, args ...string) (*Response, error) {
	cmd := command
	if len(args) > 0 {
		cmd = fmt.Sprintf("%s %s", command, strings.Join(args, " "))
	}

	if err := s.send(cmd); err != nil {
		return nil, withCommand(err, command)
	}
	resp, err := s.nextResponse()
	if err != nil {
		return nil, withCommand(err, command)
	}
	return resp, nil
}

// expectCodes sends a command and accepts any of the given codes.
func (s *Session) expectCodes(codes []int, command string, args ...string) (*Response, error) {
	resp, err := s.sendCommand(command, args...)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(codes, resp.Code) {
		return resp, statusError(command, resp)
	}
	return resp, nil
}

func withCommand(err error, command string) error {
	var e *Error
	if errors.As(err, &e) && e.Command == "" {
		e.Command = command
	}
	return err
}

// maskCommand hides the argument of PASS for logging.
func maskCommand(line string) string {
	if len(line) > 5 && strings.EqualFold(line[:5], "PASS ") {
		return line[:5] + "****"
	}
	return line
}
