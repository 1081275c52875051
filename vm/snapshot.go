package vm

import (
	"fmt"
	"strings"
)

// Snapshot is a read-only view of a Machine's state, meant for tests and
// diagnostics rather than for driving execution.
type Snapshot struct {
	Here   uint32
	Latest uint32
	State  int32
	Base   int32
	IP     uint32
	SP     uint32
	RSP    uint32

	Stack       []int32 // top of stack first
	ReturnStack []uint32

	Dict []byte // data space bytes [0, Here)
}

// Snapshot captures the machine's current state. The returned slices are
// copies; mutating them has no effect on the machine.
func (vm *Machine) Snapshot() Snapshot {
	here := vm.here()

	s := Snapshot{
		Here:   here,
		Latest: vm.latest(),
		State:  vm.state(),
		Base:   vm.base(),
		IP:     vm.ip,
		SP:     vm.sp,
		RSP:    vm.rsp,
		Dict:   append([]byte(nil), vm.data.buf[:here]...),
	}

	for addr := vm.sp; addr+CellSize <= vm.data.len(); addr += CellSize {
		s.Stack = append(s.Stack, vm.FetchCell(addr))
	}
	for addr := vm.rsp; addr+CellSize <= vm.ret.len(); addr += CellSize {
		s.ReturnStack = append(s.ReturnStack, vm.rfetch(addr))
	}
	return s
}

// Depth reports the current data-stack depth in cells.
func (vm *Machine) Depth() uint32 { return vm.depth() }

// String renders a one-screen register and stack summary: both stacks and
// the registers that decide what executes next, without Dump's full
// dictionary walk -- what a failed assertion needs at a glance.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HERE=%d LATEST=%d STATE=%d BASE=%d IP=%d SP=%d RSP=%d\n",
		s.Here, s.Latest, s.State, s.Base, s.IP, s.SP, s.RSP)
	fmt.Fprintf(&b, "stack: %v\n", s.Stack)
	fmt.Fprintf(&b, "return stack: %v\n", s.ReturnStack)
	return b.String()
}
