package csftp

// Transcript receives every line exchanged with the server, in order, without
// line terminators. Received is called for each physical reply line and for
// each line of a directory listing.
type Transcript interface {
	Sent(line string)
	Received(line string)
}

type nopTranscript struct{}

func (nopTranscript) Sent(string)     {}
func (nopTranscript) Received(string) {}
