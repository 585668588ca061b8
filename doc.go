// Package csftp implements a minimal, line-oriented FTP client engine.
//
// # Overview
//
// A Session owns one control connection to a server. Every operation sends a
// single command line, reads back exactly one logical reply and interprets its
// status code. Listings and downloads open a short-lived passive-mode data
// connection first:
//   - Single and multi-line reply parsing
//   - Passive mode (PASV) negotiation with a bounded connect timeout
//   - Authentication, directory changes, feature queries
//   - Directory listings and binary downloads
//
// Active mode, uploads, TLS and resumed transfers are not supported.
//
// # Basic Usage
//
//	sess, err := csftp.Dial("ftp.example.com:21",
//	    csftp.WithTranscript(console),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Quit()
//
//	if err := sess.Login("anonymous", "guest@"); err != nil {
//	    log.Fatal(err)
//	}
//
//	lines, err := sess.List()
//
// # Transcript
//
// Every line sent to or received from the server is handed to the configured
// Transcript as it happens, including each physical line of a multi-line reply
// and each line of a directory listing. The default transcript discards them.
//
// # Error Handling
//
// All errors returned by a Session are *Error values carrying a Kind. Fatal
// kinds mean the control connection is gone and the session is unusable:
//
//	if err := sess.ChangeDir("pub"); err != nil {
//	    if csftp.IsFatal(err) {
//	        os.Exit(1)
//	    }
//	    var e *csftp.Error
//	    if errors.As(err, &e) {
//	        fmt.Printf("%s: %d %s\n", e.Command, e.Code, e.Message)
//	    }
//	}
package csftp
