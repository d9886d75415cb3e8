package transport

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("{\"Ack\":1}\n\"Ping\"\r\n\n"))

	for _, want := range []string{`{"Ack":1}`, `"Ping"`, ``} {
		line, err := r.ReadLine()
		if err != nil {
			t.Fatalf("read %q: %v", want, err)
		}
		if string(line) != want {
			t.Fatalf("expected %q, got %q", want, line)
		}
	}
	if _, err := r.ReadLine(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF on record boundary, got %v", err)
	}
}

func TestLineReaderUnterminated(t *testing.T) {
	r := NewLineReader(strings.NewReader("ok\npartial"))
	if _, err := r.ReadLine(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadLine(); !errors.Is(err, ErrUnterminatedLine) {
		t.Fatalf("expected ErrUnterminatedLine, got %v", err)
	}
}

func TestLineReaderTooLong(t *testing.T) {
	fits := strings.Repeat("a", MaxLineLength-1) + "\n"
	r := NewLineReader(strings.NewReader(fits))
	line, err := r.ReadLine()
	if err != nil || len(line) != MaxLineLength-1 {
		t.Fatalf("line at the limit rejected: len=%d err=%v", len(line), err)
	}

	long := strings.Repeat("a", MaxLineLength) + "\n"
	r = NewLineReader(strings.NewReader(long))
	if _, err := r.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("expected ErrLineTooLong, got %v", err)
	}
}

func TestLineReaderReturnsCopies(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\nsecond\n"))
	first, _ := r.ReadLine()
	if _, err := r.ReadLine(); err != nil {
		t.Fatal(err)
	}
	if string(first) != "first" {
		t.Fatalf("earlier line overwritten: %q", first)
	}
}
