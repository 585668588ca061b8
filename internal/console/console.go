// Package console renders the operator side of a session: the prompt, the
// echoed protocol conversation and error reports.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/hjy0102/csftp"
)

const (
	// Prompt is printed before each operator command.
	Prompt = "csftp> "

	// Usage is printed when the process arguments are wrong.
	Usage = "Usage: cmd ServerAddress ServerPort"

	sentPrefix     = "--> "
	receivedPrefix = "<-- "
)

// Console writes the operator transcript to out. It implements csftp.Transcript.
type Console struct {
	out      io.Writer
	sent     *color.Color
	received *color.Color
	failure  *color.Color
}

// New returns a Console writing to out. When colored is false no escape
// sequences are written.
func New(out io.Writer, colored bool) *Console {
	c := &Console{
		out:      out,
		sent:     color.New(color.FgCyan),
		received: color.New(color.FgGreen),
		failure:  color.New(color.FgRed, color.Bold),
	}
	if colored {
		c.sent.EnableColor()
		c.received.EnableColor()
		c.failure.EnableColor()
	} else {
		c.sent.DisableColor()
		c.received.DisableColor()
		c.failure.DisableColor()
	}
	return c
}

var _ csftp.Transcript = (*Console)(nil)

// Sent echoes an outbound command line.
func (c *Console) Sent(line string) {
	c.sent.Fprintln(c.out, sentPrefix+line)
}

// Received echoes an inbound reply or data line.
func (c *Console) Received(line string) {
	c.received.Fprintln(c.out, receivedPrefix+line)
}

// Prompt prints the command prompt.
func (c *Console) Prompt() {
	fmt.Fprint(c.out, Prompt)
}

// Usage prints the process usage line.
func (c *Console) Usage() {
	fmt.Fprintln(c.out, Usage)
}

// Report prints the operator message for err.
func (c *Console) Report(err error) {
	if err == nil {
		return
	}
	c.failure.Fprintln(c.out, Describe(err))
}

// Describe returns the operator message for err.
func Describe(err error) string {
	var e *csftp.Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("0xFFFF Processing error. %s.", strings.TrimSuffix(err.Error(), "."))
	}

	switch e.Kind {
	case csftp.KindInvalidCommand:
		return "0x001 Invalid command."
	case csftp.KindArgCount:
		return "0x002 Incorrect number of arguments."
	case csftp.KindAccess:
		if e.Path != "" {
			return fmt.Sprintf("0x38E Access to local file %s denied.", e.Path)
		}
		return fmt.Sprintf("0x38E Access denied. %s.", detail(e))
	case csftp.KindDataConnect:
		if e.Host != "" {
			return fmt.Sprintf("0x3A2 Data transfer connection to %s on port %d failed to open.", e.Host, e.Port)
		}
		return fmt.Sprintf("0x3A2 Data transfer connection failed to open. %s.", detail(e))
	case csftp.KindDataIO:
		return "0x3A7 Data transfer connection I/O error, closing data connection."
	case csftp.KindControlIO, csftp.KindMalformedReply:
		return "0xFFFC Control connection I/O error, closing control connection."
	case csftp.KindServiceUnavailable:
		return "0xFFFD Control connection I/O error, closing connection."
	case csftp.KindInput:
		return "0xFFFE Input error while reading commands, terminating."
	default:
		return fmt.Sprintf("0xFFFF Processing error. %s.", detail(e))
	}
}

// detail is the server text of e, or its cause when no reply was involved.
// Message texts lose a trailing period; the callers add their own.
func detail(e *csftp.Error) string {
	if e.Message != "" {
		return strings.TrimSuffix(e.Message, ".")
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}
