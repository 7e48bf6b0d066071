package tokenizer

import (
	"bufio"
	"io"
	"os"
)

// Syncer is implemented by sources that can give unread buffered bytes back
// to the underlying descriptor.
type Syncer interface {
	Sync() error
}

// FileSource reads bytes from a file descriptor.
//
// Seekable files are read through a buffer, and Sync rewinds the descriptor
// by the unread amount so its offset lands right after the consumed row.
// Pipes and terminals are read one byte per read call so nothing past the
// row is ever taken from the descriptor.
type FileSource struct {
	f   *os.File
	br  *bufio.Reader
	one [1]byte
}

// NewFileSource creates a byte source over f.
func NewFileSource(f *os.File) *FileSource {
	s := &FileSource{f: f}
	if _, err := f.Seek(0, io.SeekCurrent); err == nil {
		s.br = bufio.NewReader(f)
	}
	return s
}

// ReadByte implements io.ByteReader.
func (s *FileSource) ReadByte() (byte, error) {
	if s.br != nil {
		return s.br.ReadByte()
	}
	for {
		n, err := s.f.Read(s.one[:])
		if n == 1 {
			return s.one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Sync returns buffered but unconsumed bytes to the descriptor.
func (s *FileSource) Sync() error {
	if s.br == nil {
		return nil
	}
	if n := s.br.Buffered(); n > 0 {
		if _, err := s.f.Seek(int64(-n), io.SeekCurrent); err != nil {
			return err
		}
	}
	s.br.Reset(s.f)
	return nil
}
