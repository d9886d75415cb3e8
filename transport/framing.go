package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// MaxLineLength bounds an inbound record, terminator included
const MaxLineLength = 64 * 1024

var (
	ErrLineTooLong      = errors.New("inbound line exceeds maximum length")
	ErrUnterminatedLine = errors.New("inbound line not terminated before end of stream")
)

// LineReader splits a byte stream into newline-terminated records
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// ReadLine returns the next record without its terminator. io.EOF is
// returned only when the stream ends on a record boundary.
func (l *LineReader) ReadLine() ([]byte, error) {
	line, err := l.r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, ErrLineTooLong
	case errors.Is(err, io.EOF) && len(line) > 0:
		return nil, ErrUnterminatedLine
	case err != nil:
		return nil, err
	}

	line = bytes.TrimSuffix(line[:len(line)-1], []byte("\r"))
	return bytes.Clone(line), nil
}
