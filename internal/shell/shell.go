// Package shell reads operator commands line by line and drives a session.
package shell

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/hjy0102/csftp"
)

// Session is the part of *csftp.Session the shell drives.
type Session interface {
	User(name string) error
	Pass(secret string) error
	ChangeDir(dir string) error
	Features() (map[string]string, error)
	List() ([]string, error)
	Retrieve(remote string) (int64, error)
	Quit() error
}

// Console is where the shell prompts and reports errors.
type Console interface {
	Prompt()
	Report(err error)
}

// Verb is an operator command.
type Verb string

const (
	VerbUser     Verb = "user"
	VerbPass     Verb = "pw"
	VerbQuit     Verb = "quit"
	VerbGet      Verb = "get"
	VerbFeatures Verb = "features"
	VerbCD       Verb = "cd"
	VerbDir      Verb = "dir"
)

// arity is the exact argument count of each verb.
var arity = map[Verb]int{
	VerbUser:     1,
	VerbPass:     1,
	VerbQuit:     0,
	VerbGet:      1,
	VerbFeatures: 0,
	VerbCD:       1,
	VerbDir:      0,
}

// Command is one parsed operator line.
type Command struct {
	Verb Verb
	Arg  string
}

// Parse parses an operator line. Text after '#' is ignored and the verb is
// case-insensitive. A blank line returns an empty Command and no error.
func Parse(line string) (Command, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, nil
	}

	verb := Verb(strings.ToLower(fields[0]))
	want, ok := arity[verb]
	if !ok {
		return Command{}, &csftp.Error{Kind: csftp.KindInvalidCommand, Message: fields[0]}
	}
	if len(fields)-1 != want {
		return Command{}, &csftp.Error{Kind: csftp.KindArgCount, Message: string(verb)}
	}

	cmd := Command{Verb: verb}
	if want == 1 {
		cmd.Arg = fields[1]
	}
	return cmd, nil
}

// Shell is the interactive command loop.
type Shell struct {
	sess    Session
	console Console
	logger  *slog.Logger
}

// New returns a Shell driving sess.
func New(sess Session, console Console, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Shell{sess: sess, console: console, logger: logger}
}

// Run reads commands from in until quit, end of input or a fatal error.
// It returns nil when the session ended normally; otherwise a fatal error
// that has already been reported. A QUIT that cannot be sent or answered is
// fatal too.
func (sh *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		sh.console.Prompt()
		if !scanner.Scan() {
			break
		}

		quit, err := sh.Execute(scanner.Text())
		if err != nil {
			sh.console.Report(err)
			if csftp.IsFatal(err) {
				return err
			}
		}
		if quit {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		fatal := &csftp.Error{Kind: csftp.KindInput, Err: err}
		sh.console.Report(fatal)
		if qerr := sh.sess.Quit(); qerr != nil {
			sh.logger.Debug("quit after input error", "error", qerr)
		}
		return fatal
	}

	sh.logger.Debug("end of input, quitting")
	if err := sh.sess.Quit(); err != nil {
		sh.console.Report(err)
		if csftp.IsFatal(err) {
			return err
		}
	}
	return nil
}

// Execute parses and runs one operator line. quit reports whether the
// session has ended.
func (sh *Shell) Execute(line string) (quit bool, err error) {
	cmd, err := Parse(line)
	if err != nil || cmd.Verb == "" {
		return false, err
	}

	sh.logger.Debug("operator command", "verb", cmd.Verb)

	switch cmd.Verb {
	case VerbUser:
		err = sh.sess.User(cmd.Arg)
	case VerbPass:
		err = sh.sess.Pass(cmd.Arg)
	case VerbQuit:
		return true, sh.sess.Quit()
	case VerbGet:
		var n int64
		n, err = sh.sess.Retrieve(cmd.Arg)
		if err == nil {
			sh.logger.Info("file retrieved", "file", cmd.Arg, "bytes", n)
		}
	case VerbFeatures:
		_, err = sh.sess.Features()
	case VerbCD:
		err = sh.sess.ChangeDir(cmd.Arg)
	case VerbDir:
		_, err = sh.sess.List()
	default:
		err = errors.New("unhandled verb " + string(cmd.Verb))
	}
	return false, err
}
