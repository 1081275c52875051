// Package fileinput supplies the VM's host input stream: a queue of one or
// more byte sources (the prelude file, then standard input) read as one
// continuous stream, with per-line location tracking for parse diagnostics.
package fileinput

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Location names a line in an Input source.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential byte reading through a Queue of one or more
// input streams. Both the current and last scanned lines are tracked to
// facilitate user feedback in parse-error diagnostics.
type Input struct {
	br    *bufio.Reader
	cur   io.Reader
	Queue []io.Reader
	Last  Line
	Scan  Line
}

// ReadByte reads one byte from the current input stream, appending it into
// the current Scan line, and rolling Scan over to Last after a line feed.
func (in *Input) ReadByte() (byte, error) {
	if in.br == nil && !in.nextIn() {
		return 0, io.EOF
	}

	b, err := in.br.ReadByte()
	for err == io.EOF {
		if !in.nextIn() {
			return 0, io.EOF
		}
		b, err = in.br.ReadByte()
	}
	if err != nil {
		return 0, err
	}

	if b == '\n' {
		in.nextLine()
	} else {
		in.Scan.WriteByte(b)
	}
	return b, nil
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Name = in.Scan.Name
	in.Last.Line = in.Scan.Line
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
}

func (in *Input) nextIn() bool {
	in.nextLine()
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.br, in.cur = nil, nil
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.br = bufio.NewReader(r)
		in.cur = r
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
		return true
	}
	return false
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

// NamedReader wraps an io.Reader to report a fixed Name(), matching what
// *os.File already provides, for use as a Queue entry (e.g. a string-backed
// prelude or test fixture).
type NamedReader struct {
	io.Reader
	name string
}

// NewNamedReader returns r tagged with name for Input's diagnostics.
func NewNamedReader(name string, r io.Reader) NamedReader {
	return NamedReader{Reader: r, name: name}
}

// Name reports the reader's tagged name.
func (nr NamedReader) Name() string { return nr.name }
