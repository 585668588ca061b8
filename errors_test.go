package csftp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Parallel()
	err := &Error{
		Kind:    KindProcessing,
		Command: "RETR",
		Code:    550,
		Message: "File not found",
	}

	assert.False(t, err.Fatal())
	assert.Equal(t, "csftp: RETR: processing error: File not found (code 550)", err.Error())
}

func TestError_Fields(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	err := &Error{Kind: KindDataConnect, Command: "PASV", Host: "10.0.0.1", Port: 2121, Err: cause}

	assert.Equal(t, "csftp: PASV: data connection failed to open (10.0.0.1:2121): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	access := &Error{Kind: KindAccess, Path: "out/file.txt"}
	assert.Equal(t, "csftp: access denied (out/file.txt)", access.Error())
}

func TestKindFatal(t *testing.T) {
	t.Parallel()
	fatal := map[Kind]bool{
		KindInvalidCommand:     false,
		KindArgCount:           false,
		KindProcessing:         false,
		KindAccess:             false,
		KindDataConnect:        false,
		KindDataIO:             false,
		KindControlIO:          true,
		KindMalformedReply:     true,
		KindServiceUnavailable: true,
		KindInput:              true,
	}
	for kind, want := range fatal {
		assert.Equal(t, want, kind.Fatal(), kind.String())
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestIsFatalAndKindOf(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("shell: %w", &Error{Kind: KindControlIO})

	assert.True(t, IsFatal(wrapped))
	assert.Equal(t, KindControlIO, KindOf(wrapped))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}
