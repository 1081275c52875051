package vm

import "encoding/binary"

// CellSize is the width of a cell in bytes. A cell is a 32-bit signed
// integer; arithmetic on it wraps modulo 2^32.
const CellSize = 4

// Fixed data-space addresses. HERE's own backing cell is placed at address
// 4, inside the guard region that otherwise only protects the address-0
// sentinel -- see DESIGN.md for why this resolves the layout ambiguity.
const (
	AddrGuard  uint32 = 0 // never a valid address; the "not found" sentinel
	AddrHere   uint32 = 4
	AddrS0     uint32 = 8
	AddrState  uint32 = 12
	AddrBase   uint32 = 16
	AddrLatest uint32 = 20
	AddrWord   uint32 = 24 // 32-byte scratch buffer for the most recently parsed word
	wordBufLen uint32 = 32

	// initialHere is both the starting value stored into the HERE cell and
	// the first address past the fixed variables and WORD buffer.
	initialHere uint32 = AddrWord + wordBufLen
)

// Default sizing, per spec.
const (
	DefaultDataSpaceSize  = 64 * 1024
	DefaultReturnStackSize = 4 * 1024
)

// align rounds addr up to the next multiple of CellSize.
func align(addr uint32) uint32 {
	return (addr + CellSize - 1) &^ (CellSize - 1)
}

// dataSpace is the VM's single contiguous byte arena: dictionary, variables,
// and the data stack all live here, the stack growing down from the top.
type dataSpace struct {
	buf []byte
}

func newDataSpace(size int) dataSpace {
	return dataSpace{buf: make([]byte, size)}
}

func (d dataSpace) len() uint32 { return uint32(len(d.buf)) }

func (vm *Machine) checkCell(addr uint32, op string) {
	if addr%CellSize != 0 {
		vm.abort(MemoryError{Addr: addr, Misalign: true, Op: op})
	}
	if addr > vm.data.len()-CellSize || addr+CellSize < addr {
		vm.abort(MemoryError{Addr: addr, Len: vm.data.len(), Op: op})
	}
}

func (vm *Machine) checkByte(addr uint32, op string) {
	if addr >= vm.data.len() {
		vm.abort(MemoryError{Addr: addr, Len: vm.data.len(), Op: op})
	}
}

// FetchCell reads the 32-bit cell at addr. addr must be cell-aligned and
// within the data space; violations abort the machine.
func (vm *Machine) FetchCell(addr uint32) int32 {
	vm.checkCell(addr, "@")
	return int32(binary.LittleEndian.Uint32(vm.data.buf[addr:]))
}

// StoreCell writes val as the 32-bit cell at addr.
func (vm *Machine) StoreCell(addr uint32, val int32) {
	vm.checkCell(addr, "!")
	binary.LittleEndian.PutUint32(vm.data.buf[addr:], uint32(val))
}

// FetchByte reads the byte at addr.
func (vm *Machine) FetchByte(addr uint32) byte {
	vm.checkByte(addr, "C@")
	return vm.data.buf[addr]
}

// StoreByte writes b at addr.
func (vm *Machine) StoreByte(addr uint32, b byte) {
	vm.checkByte(addr, "C!")
	vm.data.buf[addr] = b
}

// Align rounds addr up to the next cell boundary.
func (vm *Machine) Align(addr uint32) uint32 { return align(addr) }

//// Variables (cells embedded in data space at fixed addresses)

func (vm *Machine) here() uint32     { return uint32(vm.FetchCell(AddrHere)) }
func (vm *Machine) setHere(v uint32) { vm.StoreCell(AddrHere, int32(v)) }

func (vm *Machine) latest() uint32     { return uint32(vm.FetchCell(AddrLatest)) }
func (vm *Machine) setLatest(v uint32) { vm.StoreCell(AddrLatest, int32(v)) }

func (vm *Machine) state() int32     { return vm.FetchCell(AddrState) }
func (vm *Machine) setState(v int32) { vm.StoreCell(AddrState, v) }

func (vm *Machine) base() int32 { return vm.FetchCell(AddrBase) }

//// Data stack: grows downward from data.len(); SP is a byte address.

func (vm *Machine) push(v int32) {
	if vm.sp < CellSize || vm.sp-CellSize < vm.here() {
		vm.abort(StackError{Stack: "data", Op: "push"})
	}
	vm.sp -= CellSize
	vm.StoreCell(vm.sp, v)
}

func (vm *Machine) pop() int32 {
	if vm.sp > vm.data.len()-CellSize {
		vm.abort(StackError{Stack: "data", Op: "pop"})
	}
	v := vm.FetchCell(vm.sp)
	vm.sp += CellSize
	return v
}

// pick reads the cell `depth` cells above the top without mutating SP;
// depth 0 is the top of stack.
func (vm *Machine) pick(depth uint32) int32 {
	addr := vm.sp + depth*CellSize
	if addr > vm.data.len()-CellSize {
		vm.abort(StackError{Stack: "data", Op: "pick"})
	}
	return vm.FetchCell(addr)
}

func (vm *Machine) dropCells(n uint32) {
	next := vm.sp + n*CellSize
	if next < vm.sp || next > vm.data.len() {
		vm.abort(StackError{Stack: "data", Op: "drop"})
	}
	vm.sp = next
}

func (vm *Machine) depth() uint32 { return (vm.data.len() - vm.sp) / CellSize }

//// Return stack: a second, independent byte buffer with its own pointer.

type returnStack struct {
	buf []byte
}

func newReturnStack(size int) returnStack {
	return returnStack{buf: make([]byte, size)}
}

func (r returnStack) len() uint32 { return uint32(len(r.buf)) }

func (vm *Machine) rpush(v uint32) {
	if vm.rsp < CellSize {
		vm.abort(StackError{Stack: "return", Op: "push"})
	}
	vm.rsp -= CellSize
	binary.LittleEndian.PutUint32(vm.ret.buf[vm.rsp:], v)
}

func (vm *Machine) rpop() uint32 {
	if vm.rsp > vm.ret.len()-CellSize {
		vm.abort(StackError{Stack: "return", Op: "pop"})
	}
	v := binary.LittleEndian.Uint32(vm.ret.buf[vm.rsp:])
	vm.rsp += CellSize
	return v
}

func (vm *Machine) rfetch(addr uint32) uint32 {
	if addr > vm.ret.len()-CellSize {
		vm.abort(MemoryError{Addr: addr, Len: vm.ret.len(), Op: "R@"})
	}
	return binary.LittleEndian.Uint32(vm.ret.buf[addr:])
}
