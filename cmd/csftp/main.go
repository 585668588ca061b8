// Command csftp is a minimal interactive FTP client.
//
//	csftp ServerAddress ServerPort
//
// Commands: user <name>, pw <secret>, cd <dir>, dir, get <file>, features, quit.
package main

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/hjy0102/csftp"
	"github.com/hjy0102/csftp/internal/config"
	"github.com/hjy0102/csftp/internal/console"
	"github.com/hjy0102/csftp/internal/shell"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv))
}

// run returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	env, err := config.GetEnv(lookup)
	if err != nil {
		config.NewLogger(stderr, &config.Environment{NoColor: true}).Error("invalid environment", "error", err)
		return 1
	}

	logger := config.NewLogger(stderr, env)
	out := console.New(stdout, !env.NoColor && !color.NoColor && stdout == io.Writer(os.Stdout))

	addr, err := config.ParseArgs(args)
	if err != nil {
		out.Usage()
		return 0
	}

	opts := append(env.Options(),
		csftp.WithLogger(logger.With("module", "session")),
		csftp.WithTranscript(out),
	)

	sess, err := csftp.Dial(addr, opts...)
	if err != nil {
		logger.Debug("connect failed", "addr", addr, "error", err)
		out.Report(err)
		return 1
	}

	if err := shell.New(sess, out, logger.With("module", "shell")).Run(stdin); err != nil {
		logger.Debug("session ended", "error", err)
		sess.Close()
		return 1
	}
	return 0
}
