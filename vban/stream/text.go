package stream

import "github.com/wmbest2/govban/vban"

// TextStream is an OutgoingStream specialized for the Text sub-protocol.
// Ground: original_source's VBANTextStream.send_text.
type TextStream struct {
	*OutgoingStream
	baud vban.SRIndex
}

// NewTextStream creates a TextStream at the given baud rate index.
func NewTextStream(name string, sender Sender, baud vban.SRIndex) *TextStream {
	return &TextStream{OutgoingStream: NewOutgoingStream(name, sender), baud: baud}
}

// SendText encodes text as a Text/UTF-8 packet and sends it.
func (s *TextStream) SendText(text string) error {
	h := vban.NewHeader(vban.ProtocolText, s.name)
	h.SetTextFormat(vban.TextFormat{BaudIndex: s.baud, StreamType: vban.TextStreamUTF8})
	return s.Send(h, []byte(text))
}
