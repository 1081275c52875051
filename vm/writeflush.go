package vm

import (
	"bufio"
	"io"
)

// writeFlusher is a flush-able io.Writer: the shape Machine.out and the
// output fan-out WithOutput/WithTee build both need, since EMIT writes one
// byte at a time but a flush should only reach the underlying sink once,
// when the run ends (halt, or abort on a fatal error).
type writeFlusher interface {
	io.Writer
	Flush() error
}

// newWriteFlusher adapts w for use as VM output. A writer that is already
// flushable is returned as-is; an in-memory buffer (bytes.Buffer,
// strings.Builder, and alikes) never needs flushing, so it gets a no-op
// Flush; anything else -- a file, a pipe, a tee through logio.Writer -- is
// wrapped in a bufio.Writer so single-byte EMIT writes are batched until
// halt or abort calls Flush.
func newWriteFlusher(w io.Writer) writeFlusher {
	if wf, ok := w.(writeFlusher); ok {
		return wf
	}

	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// writeFlushers fans a write/flush out across every configured output
// sink -- the primary writer plus any tee added by WithTee -- presenting
// the same single writeFlusher contract Machine.out expects.
type writeFlushers []writeFlusher

func (wfs writeFlushers) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (wfs writeFlushers) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

// fanOutWriteFlushers combines any number of writeFlushers into a single
// one, flattening nested fan-outs so Flush only ever walks one level.
func fanOutWriteFlushers(wfs ...writeFlusher) writeFlusher {
	var flat writeFlushers
	for _, one := range wfs {
		if many, ok := one.(writeFlushers); ok {
			flat = append(flat, many...)
		} else if one != nil {
			flat = append(flat, one)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return flat
	}
}
