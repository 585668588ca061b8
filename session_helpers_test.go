package csftp

import (
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockServer provides a simple way to script server responses
type mockServer struct {
	t        *testing.T
	listener net.Listener
	addr     string

	// greeting is the first reply sent on connect
	greeting string

	// handlers maps a command verb (e.g. "USER") to its scripted behavior.
	// Unhandled verbs get a default reply.
	handlers map[string]func(conn *textproto.Conn, args string)

	// dataConns delivers the connection accepted on the last PASV listener
	dataConns chan net.Conn

	mu               sync.Mutex
	receivedCommands []string

	done chan struct{}
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &mockServer{
		t:        t,
		listener: l,
		addr:     l.Addr().String(),
		greeting: "220 Service ready",
		handlers: make(map[string]func(*textproto.Conn, string)),
		done:     make(chan struct{}),
	}
	t.Cleanup(func() {
		l.Close()
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
			t.Error("mock server did not stop")
		}
	})
	return s
}

// reply scripts a fixed reply for a verb; lines are sent in order.
func (s *mockServer) reply(cmd string, lines ...string) {
	s.handlers[cmd] = func(c *textproto.Conn, _ string) {
		for _, l := range lines {
			_ = c.PrintfLine("%s", l)
		}
	}
}

// enablePassive makes PASV open a real data listener on 127.0.0.1.
func (s *mockServer) enablePassive() {
	s.handlers["PASV"] = func(c *textproto.Conn, _ string) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			_ = c.PrintfLine("425 Can't open data connection.")
			return
		}
		conns := make(chan net.Conn, 1)
		s.dataConns = conns
		go func() {
			defer l.Close()
			conn, err := l.Accept()
			if err != nil {
				close(conns)
				return
			}
			conns <- conn
		}()
		port := l.Addr().(*net.TCPAddr).Port
		_ = c.PrintfLine("227 Entering Passive Mode (127,0,0,1,%d,%d).", port/256, port%256)
	}
}

// serveData sends 150, writes payload on the data connection, closes it and
// sends the completion reply.
func (s *mockServer) serveData(c *textproto.Conn, payload string, completion string) {
	_ = c.PrintfLine("150 Opening BINARY mode data connection.")
	if conn, ok := <-s.dataConns; ok {
		_, _ = conn.Write([]byte(payload))
		conn.Close()
	}
	_ = c.PrintfLine("%s", completion)
}

// dropData discards the pending data connection, if any.
func (s *mockServer) dropData() {
	if s.dataConns == nil {
		return
	}
	select {
	case conn, ok := <-s.dataConns:
		if ok {
			conn.Close()
		}
	case <-time.After(time.Second):
	}
}

func (s *mockServer) start() {
	go func() {
		defer close(s.done)
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		textConn := textproto.NewConn(conn)
		defer textConn.Close()

		if s.greeting != "" {
			fmt.Fprintf(conn, "%s\r\n", s.greeting)
		}

		for {
			line, err := textConn.ReadLine()
			if err != nil {
				return
			}

			cmd, args, _ := strings.Cut(line, " ")
			cmd = strings.ToUpper(cmd)

			s.mu.Lock()
			s.receivedCommands = append(s.receivedCommands, line)
			s.mu.Unlock()

			if handler, ok := s.handlers[cmd]; ok {
				handler(textConn, args)
				if cmd == "QUIT" {
					return
				}
				continue
			}

			// Default behavior for common commands if no handler
			switch cmd {
			case "USER":
				_ = textConn.PrintfLine("331 User name okay, need password.")
			case "PASS":
				_ = textConn.PrintfLine("230 User logged in, proceed.")
			case "TYPE":
				_ = textConn.PrintfLine("200 Command okay.")
			case "CWD":
				_ = textConn.PrintfLine("250 Requested file action okay, completed.")
			case "QUIT":
				_ = textConn.PrintfLine("221 Service closing control connection.")
				return
			default:
				_ = textConn.PrintfLine("502 Command not implemented.")
			}
		}
	}()
}

// commands returns the command lines received so far.
func (s *mockServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.receivedCommands...)
}

// transcript records every line, prefixed like the operator console.
type transcript struct {
	lines []string
}

func (r *transcript) Sent(line string)     { r.lines = append(r.lines, "--> "+line) }
func (r *transcript) Received(line string) { r.lines = append(r.lines, "<-- "+line) }

// dialMock starts s and dials it with a recording transcript.
func dialMock(t *testing.T, s *mockServer, options ...Option) (*Session, *transcript) {
	t.Helper()
	s.start()
	rec := &transcript{}
	sess, err := Dial(s.addr, append([]Option{WithTranscript(rec), WithDataTimeout(5 * time.Second)}, options...)...)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess, rec
}
