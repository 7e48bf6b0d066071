package tokenizer

import (
	"io"
	"unicode/utf8"

	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// StreamSource reads bytes from a shape-core stream.
//
// Performance: uses ByteStream when the stream supports it. Otherwise runes
// are re-encoded as UTF-8, so invalid input bytes come back as U+FFFD.
type StreamSource struct {
	stream  tokenizer.Stream
	bytes   tokenizer.ByteStream
	pending []byte
}

// NewStreamSource creates a byte source over stream.
func NewStreamSource(stream tokenizer.Stream) *StreamSource {
	s := &StreamSource{stream: stream}
	if byteStream, ok := stream.(tokenizer.ByteStream); ok {
		s.bytes = byteStream
	}
	return s
}

// NewStringSource creates a byte source over an in-memory string.
func NewStringSource(input string) *StreamSource {
	return NewStreamSource(tokenizer.NewStream(input))
}

// NewReaderSource creates a byte source over r using shape-core's buffered stream.
func NewReaderSource(r io.Reader) *StreamSource {
	return NewStreamSource(tokenizer.NewStreamFromReader(r))
}

// ReadByte implements io.ByteReader.
func (s *StreamSource) ReadByte() (byte, error) {
	if s.bytes != nil {
		b, ok := s.bytes.PeekByte()
		if !ok {
			return 0, io.EOF
		}
		s.bytes.NextByte()
		return b, nil
	}

	if len(s.pending) > 0 {
		b := s.pending[0]
		s.pending = s.pending[1:]
		return b, nil
	}

	r, ok := s.stream.NextChar()
	if !ok {
		return 0, io.EOF
	}
	if r < utf8.RuneSelf {
		return byte(r), nil
	}
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	s.pending = append(s.pending[:0], enc[1:n]...)
	return enc[0], nil
}
