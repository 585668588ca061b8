// Package config reads the csftp environment and process arguments and builds
// the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hjy0102/csftp"
)

// ErrUsage means the process arguments are not "host port".
var ErrUsage = errors.New("usage: csftp ServerAddress ServerPort")

// Environment is the environment of the client
type Environment struct {
	// LogLevel from CSFTP_LOG_LEVEL: DEBUG, INFO, WARN (default) or ERROR
	LogLevel slog.Level

	// DataTimeout from CSFTP_DATA_TIMEOUT, a Go duration
	DataTimeout time.Duration

	// LocalDir from CSFTP_LOCAL_DIR, where downloads are written
	LocalDir string

	// NoColor is set by NO_COLOR or CSFTP_NO_COLOR
	NoColor bool
}

// GetEnv returns the Environment described by lookup, normally os.LookupEnv.
func GetEnv(lookup func(string) (string, bool)) (*Environment, error) {
	env := &Environment{
		LogLevel:    slog.LevelWarn,
		DataTimeout: csftp.DefaultDataTimeout,
		LocalDir:    ".",
	}

	if v, ok := lookup("CSFTP_LOG_LEVEL"); ok && v != "" {
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case "DEBUG":
			env.LogLevel = slog.LevelDebug
		case "INFO":
			env.LogLevel = slog.LevelInfo
		case "WARN":
			env.LogLevel = slog.LevelWarn
		case "ERROR":
			env.LogLevel = slog.LevelError
		default:
			return nil, fmt.Errorf("invalid CSFTP_LOG_LEVEL %q", v)
		}
	}

	if v, ok := lookup("CSFTP_DATA_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CSFTP_DATA_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid CSFTP_DATA_TIMEOUT %q: must be positive", v)
		}
		env.DataTimeout = d
	}

	if v, ok := lookup("CSFTP_LOCAL_DIR"); ok && v != "" {
		env.LocalDir = v
	}

	if _, ok := lookup("NO_COLOR"); ok {
		env.NoColor = true
	}
	if v, ok := lookup("CSFTP_NO_COLOR"); ok && v != "" && v != "0" {
		env.NoColor = true
	}

	return env, nil
}

// Options returns the session options for this environment.
func (env *Environment) Options() []csftp.Option {
	return []csftp.Option{
		csftp.WithDataTimeout(env.DataTimeout),
		csftp.WithLocalDir(env.LocalDir),
	}
}

// ParseArgs validates the "host port" arguments and returns the dial address.
func ParseArgs(args []string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	host := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil || port < 1 || port > 65535 || host == "" {
		return "", ErrUsage
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// NewLogger returns the process logger writing to w.
func NewLogger(w io.Writer, env *Environment) *slog.Logger {
	handlerOptions := &tint.Options{
		AddSource: env.LogLevel == slog.LevelDebug,
		Level:     env.LogLevel,
		NoColor:   env.NoColor,
	}

	handler := tint.NewHandler(w, handlerOptions)
	return slog.New(handler).With("app", "csftp")
}
