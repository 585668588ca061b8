package csftp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
)

// List retrieves the listing of the current directory with LIST. Every line
// read from the data connection is handed to the transcript and returned.
//
// A 450 reply yields a KindAccess error. A failure while reading the data
// connection yields KindDataIO; the completion reply is still consumed, so the
// session remains usable.
func (s *Session) List() ([]string, error) {
	dataConn, err := s.openDataConn()
	if err != nil {
		return nil, err
	}
	defer dataConn.Close()

	resp, err := s.sendCommand("LIST")
	if err != nil {
		return nil, err
	}

	switch resp.Code {
	case 125, 150:
	case 450:
		return nil, &Error{Kind: KindAccess, Command: "LIST", Code: resp.Code, Message: resp.Message}
	default:
		return nil, statusError("LIST", resp)
	}

	lines, readErr := s.readListing(dataConn)
	dataConn.Close()

	if _, err := s.finishTransfer("LIST"); err != nil && (readErr == nil || IsFatal(err)) {
		return lines, err
	}
	if readErr != nil {
		return lines, &Error{Kind: KindDataIO, Command: "LIST", Err: readErr}
	}
	return lines, nil
}

// readListing echoes lines from the data connection until end of stream.
func (s *Session) readListing(dataConn net.Conn) ([]string, error) {
	var lines []string
	r := bufio.NewReader(dataConn)
	for {
		line, err := readLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, err
		}
		s.transcript.Received(line)
		lines = append(lines, line)
	}
}

// Retrieve downloads the remote file in binary mode (TYPE I) into a local file
// of the same base name inside the local directory, returning the number of
// bytes written.
//
// The local file is created only once the server has accepted RETR. If it
// cannot be created, the data connection is closed without reading, the
// completion reply is consumed and a KindAccess error naming the local path is
// returned. A failed transfer removes the partial file.
func (s *Session) Retrieve(remote string) (int64, error) {
	dataConn, err := s.openDataConn()
	if err != nil {
		return 0, err
	}
	defer dataConn.Close()

	if _, err := s.expectCodes([]int{200}, "TYPE", "I"); err != nil {
		return 0, err
	}

	resp, err := s.sendCommand("RETR", remote)
	if err != nil {
		return 0, err
	}
	if resp.Code != 125 && resp.Code != 150 {
		return 0, statusError("RETR", resp)
	}

	localPath := s.localPath(remote)
	file, err := os.Create(localPath)
	if err != nil {
		dataConn.Close()
		if _, ferr := s.finishTransfer("RETR"); IsFatal(ferr) {
			return 0, ferr
		}
		return 0, &Error{Kind: KindAccess, Command: "RETR", Path: localPath, Err: err}
	}

	pw := &ProgressWriter{Writer: file, Callback: s.progress}
	n, copyErr := io.Copy(pw, dataConn)
	closeErr := file.Close()
	dataConn.Close()

	s.logger.Debug("ftp retrieve finished", "file", localPath, "bytes", n)

	_, finishErr := s.finishTransfer("RETR")

	switch {
	case IsFatal(finishErr):
		return n, finishErr
	case copyErr != nil:
		s.removePartial(localPath)
		return n, &Error{Kind: KindDataIO, Command: "RETR", Err: fmt.Errorf("download failed: %w", copyErr)}
	case closeErr != nil:
		s.removePartial(localPath)
		return n, &Error{Kind: KindAccess, Command: "RETR", Path: localPath, Err: closeErr}
	case finishErr != nil:
		s.removePartial(localPath)
		return n, finishErr
	}
	return n, nil
}

// localPath maps a remote name to the file Retrieve creates.
func (s *Session) localPath(remote string) string {
	return filepath.Join(s.localDir, filepath.FromSlash(path.Base(remote)))
}

func (s *Session) removePartial(localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove partial file", "file", localPath, "error", err)
	}
}
