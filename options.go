package csftp

import (
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Option is a functional option for configuring a Session.
type Option func(*Session) error

// WithDataTimeout sets the timeout for establishing data connections.
// Control and data reads are never bounded.
func WithDataTimeout(timeout time.Duration) Option {
	return func(s *Session) error {
		if timeout <= 0 {
			return fmt.Errorf("data timeout must be positive, got %s", timeout)
		}
		s.dataTimeout = timeout
		return nil
	}
}

// WithLogger enables debug logging using the provided logger.
// All FTP commands and responses will be logged at debug level,
// with the PASS argument masked.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	sess, _ := csftp.Dial("ftp.example.com:21", csftp.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		s.logger = logger
		return nil
	}
}

// WithDialer sets a custom net.Dialer for establishing connections.
// Its Timeout applies to the control connection; data connections use the
// data timeout.
func WithDialer(dialer *net.Dialer) Option {
	return func(s *Session) error {
		if dialer == nil {
			return fmt.Errorf("dialer must not be nil")
		}
		s.dialer = dialer
		return nil
	}
}

// WithTranscript sets the receiver of every line exchanged with the server.
func WithTranscript(t Transcript) Option {
	return func(s *Session) error {
		if t == nil {
			t = nopTranscript{}
		}
		s.transcript = t
		return nil
	}
}

// WithLocalDir sets the directory where Retrieve creates files.
func WithLocalDir(dir string) Option {
	return func(s *Session) error {
		s.localDir = dir
		return nil
	}
}

// WithProgress registers a callback invoked with the running byte count
// while a file is retrieved.
func WithProgress(callback func(bytesTransferred int64)) Option {
	return func(s *Session) error {
		s.progress = callback
		return nil
	}
}
