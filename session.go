package csftp

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strings"
	"time"
)

// DefaultDataTimeout bounds the data connection dial.
const DefaultDataTimeout = 80 * time.Second

var errNotConnected = errors.New("not connected")

// Session represents the single control connection to an FTP server.
// A Session is not safe for concurrent use; commands are strictly sequential.
type Session struct {
	// conn is the underlying network connection (control channel)
	conn net.Conn

	// reader is a buffered reader for the control channel
	reader *bufio.Reader

	// host of the control connection, used for 0.0.0.0 passive replies
	host string

	// dialer is used to establish connections
	dialer *net.Dialer

	// dataTimeout bounds each data connection dial
	dataTimeout time.Duration

	// logger is used for debug logging
	logger *slog.Logger

	// transcript receives every line exchanged with the server
	transcript Transcript

	// localDir is where retrieved files are created
	localDir string

	// progress is called with the running byte count of a download
	progress func(bytesTransferred int64)

	connected    bool
	loggedIn     bool
	awaitingPass bool
	workingDir   string
}

// Dial connects to an FTP server at the given address and reads its greeting.
// The address should be in the form "host:port".
//
// Example:
//
//	sess, err := csftp.Dial("ftp.example.com:21")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Quit()
func Dial(addr string, options ...Option) (*Session, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	s := &Session{
		host:        host,
		dialer:      &net.Dialer{},
		dataTimeout: DefaultDataTimeout,
		logger:      slog.New(slog.DiscardHandler),
		transcript:  nopTranscript{},
		localDir:    ".",
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	s.logger.Debug("connecting to ftp server", "addr", addr)
	conn, err := s.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, &Error{Kind: KindControlIO, Command: "CONNECT", Err: fmt.Errorf("failed to connect: %w", err)}
	}
	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.connected = true

	if err := s.greet(); err != nil {
		return nil, err
	}
	return s, nil
}

// greet reads the initial 220 reply.
func (s *Session) greet() error {
	resp, err := s.nextResponse()
	if err != nil {
		return withCommand(err, "CONNECT")
	}

	s.logger.Debug("ftp greeting", "code", resp.Code, "message", resp.Message)

	if resp.Code != 220 {
		// 120 (ready in nnn minutes) and 421 (not available) land here too.
		s.abort()
		return &Error{
			Kind:    KindServiceUnavailable,
			Command: "CONNECT",
			Code:    resp.Code,
			Message: resp.Message,
		}
	}
	return nil
}

// abort closes the control connection after a fatal fault.
func (s *Session) abort() {
	if !s.connected {
		return
	}
	s.connected = false
	s.loggedIn = false
	s.awaitingPass = false
	if err := s.conn.Close(); err != nil {
		s.logger.Debug("closing control connection", "error", err)
	}
}

// Connected reports whether the control connection is still open.
func (s *Session) Connected() bool {
	return s.connected
}

// LoggedIn reports whether the server accepted the credentials.
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

// AwaitingPassword reports whether the last USER was answered with 331.
func (s *Session) AwaitingPassword() bool {
	return s.awaitingPass
}

// WorkingDir returns the directory last changed to with ChangeDir. It is
// informational only; the server holds the real state. Empty until the first
// successful ChangeDir.
func (s *Session) WorkingDir() string {
	return s.workingDir
}

// User sends the USER command. The outcome is visible through LoggedIn and
// AwaitingPassword: 230 logs in, 331 asks for a password, 530 and 332 are
// accepted without further action.
func (s *Session) User(name string) error {
	resp, err := s.expectCodes([]int{230, 530, 331, 332}, "USER", name)
	if err != nil {
		return err
	}

	s.loggedIn = resp.Code == 230
	s.awaitingPass = resp.Code == 331
	return nil
}

// Pass sends the PASS command. 230 and 202 log in; 530 and 332 are accepted.
func (s *Session) Pass(secret string) error {
	resp, err := s.expectCodes([]int{230, 202, 530, 332}, "PASS", secret)
	if err != nil {
		return err
	}

	s.awaitingPass = false
	s.loggedIn = resp.Code == 230 || resp.Code == 202
	return nil
}

// Login authenticates with username and password. PASS is only sent when the
// server asks for it.
func (s *Session) Login(username, password string) error {
	if err := s.User(username); err != nil {
		return err
	}
	if s.awaitingPass {
		if err := s.Pass(password); err != nil {
			return err
		}
	}
	if !s.loggedIn {
		return &Error{Kind: KindProcessing, Command: "PASS", Message: "not logged in"}
	}
	return nil
}

// ChangeDir changes the working directory on the server.
func (s *Session) ChangeDir(dir string) error {
	if _, err := s.expectCodes([]int{200, 250}, "CWD", dir); err != nil {
		return err
	}

	if path.IsAbs(dir) || s.workingDir == "" {
		s.workingDir = path.Clean(dir)
	} else {
		s.workingDir = path.Join(s.workingDir, dir)
	}
	return nil
}

// Features queries the server with FEAT and returns the advertised features
// mapped to their parameters (if any).
func (s *Session) Features() (map[string]string, error) {
	resp, err := s.expectCodes([]int{200, 211, 250}, "FEAT")
	if err != nil {
		return nil, err
	}
	return parseFeatureLines(resp.Lines), nil
}

// parseFeatureLines parses the lines of a FEAT response.
// Supports both formats:
// - RFC 2389: "211-Features:\r\n FEAT1\r\n FEAT2 params\r\n211 End"
// - Traditional: "211-Features\r\n211-FEAT1\r\n211-FEAT2 params\r\n211 End"
func parseFeatureLines(lines []string) map[string]string {
	features := make(map[string]string)
	if len(lines) < 2 {
		return features
	}

	code := lines[0]
	if len(code) > 3 {
		code = code[:3]
	}

	// The first and last lines are the status lines.
	for _, line := range lines[1 : len(lines)-1] {
		var featureLine string
		switch {
		case strings.HasPrefix(line, " "):
			featureLine = strings.TrimSpace(line)
		case len(line) >= 4 && line[3] == '-' && line[:3] == code:
			featureLine = strings.TrimSpace(line[4:])
		default:
			continue
		}

		if featureLine == "" {
			continue
		}

		name, params, _ := strings.Cut(featureLine, " ")
		features[strings.ToUpper(name)] = strings.TrimSpace(params)
	}
	return features
}

// Quit sends QUIT, reads the final reply whatever its code, and closes the
// connection. The returned error reports only I/O faults.
func (s *Session) Quit() error {
	if !s.connected {
		return nil
	}

	_, err := s.sendCommand("QUIT")
	s.Close()
	return err
}

// Close closes the control connection without sending QUIT.
func (s *Session) Close() {
	s.abort()
}
