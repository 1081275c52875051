package vm

import (
	"errors"
	"fmt"

	"github.com/kristopherjohnson/suwaneeforth/internal/runeio"
)

// errHalt is the sentinel the inner run loop panics with on normal
// termination: EOF on KEY/WORD, or BYE. Run treats it as a nil error.
var errHalt = errors.New("forth: normal halt")

// StackError reports a data- or return-stack over/underflow.
type StackError struct {
	Stack string // "data" or "return"
	Op    string // the primitive that tripped the check
}

func (e StackError) Error() string {
	return fmt.Sprintf("%s stack %s during %s", e.Stack, stackVerb(e.Op), e.Op)
}

func stackVerb(op string) string {
	return "under/overflow"
}

// MemoryError reports an out-of-range or misaligned data-space access.
type MemoryError struct {
	Addr      uint32
	Len       uint32 // buffer length the address was checked against
	Misalign  bool
	Op        string
}

func (e MemoryError) Error() string {
	if e.Misalign {
		return fmt.Sprintf("misaligned cell access @%d during %s", e.Addr, e.Op)
	}
	return fmt.Sprintf("address @%d out of range [0,%d) during %s", e.Addr, e.Len, e.Op)
}

// OpcodeError reports a code-field value that does not map to any known
// primitive, including the reserved 0 slot used to trap uninitialized
// memory.
type OpcodeError struct {
	Code uint32
	Addr uint32
}

func (e OpcodeError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("invalid opcode 0 (uninitialized memory) @%d", e.Addr)
	}
	return fmt.Sprintf("invalid opcode %d @%d", e.Code, e.Addr)
}

// ParseError reports INTERPRET failing to find a word, with number-parsing
// also leaving a nonzero unparsed remainder.
type ParseError struct {
	Word      string
	Unparsed  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error: %q is neither a known word nor a valid number (%d unparsed byte(s))", e.Word, e.Unparsed)
}

// CapacityError reports a WORD-buffer overflow or an illegal stack-pointer
// assignment.
type CapacityError struct {
	Reason string
}

func (e CapacityError) Error() string { return "capacity error: " + e.Reason }

// formatByte renders a byte for inclusion in a KEY/EMIT trace message.
func formatByte(b byte) string { return runeio.FormatByte(b) }
