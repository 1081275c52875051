// Package prelude embeds the FORTH source loaded after bootstrap installs
// the primitive dictionary: the higher-level words (printing, control-flow
// compilers, stack helpers) that turn a bare kernel into something usable,
// written in FORTH itself rather than in Go.
package prelude

import (
	"bytes"
	_ "embed"
	"io"
)

//go:embed system.forth
var source string

// Source returns the prelude's FORTH text.
func Source() string { return source }

// Reader returns a fresh reader over the prelude text, suitable for queuing
// ahead of a host's own input stream.
func Reader() io.Reader { return bytes.NewReader([]byte(source)) }
