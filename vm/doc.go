/*
Package vm implements a hosted 32-bit FORTH virtual machine: a single
contiguous byte-addressable data space holding a threaded dictionary,
variables, and a downward-growing data stack, driven by an outer
interpreter that reads whitespace-delimited words from a host byte stream.

The machine is constructed with New and driven with Run, which locates the
bootstrapped QUIT word and threads execution through it until the host
input reaches EOF, BYE is executed, or a fatal condition aborts the run.
Fatal conditions -- stack over/underflow, misaligned or out-of-range memory
access, an unknown opcode, a parse error, or a capacity violation -- are
reported as one of the typed errors in errors.go.

The dictionary, data space layout, and primitive opcode set follow the
classical indirect-threaded-code design popularized by Jonesforth: compound
words are headed by the DOCOL codeword and thread through code-field
addresses; primitives are dispatched through a dense integer opcode rather
than a function pointer, since a 32-bit cell cannot hold a pointer on a
64-bit host.
*/
package vm
