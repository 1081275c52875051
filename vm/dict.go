package vm

// Dictionary entry flags, part of the external contract: prelude code
// manipulates these bits directly via the F_IMMED/F_HIDDEN/F_LENMASK
// primitives.
const (
	FlagImmediate byte = 0x80
	FlagHidden    byte = 0x20
	lenMask       byte = 0x1f
)

// A dictionary entry has this fixed shape:
//
//	link          1 cell  address of previous entry, or 0
//	flags+length  1 byte  top 3 bits flags, low 5 bits name length
//	name          length bytes
//	padding       0-3 bytes to the next cell boundary
//	code field    1 cell  opcode, or opDOCOL for a compound word
//	parameter...  >=0 cells

func (vm *Machine) entryLink(e uint32) uint32     { return uint32(vm.FetchCell(e)) }
func (vm *Machine) entryFlagsLen(e uint32) byte    { return vm.FetchByte(e + CellSize) }
func (vm *Machine) entryNameLen(e uint32) uint32 {
	return uint32(vm.entryFlagsLen(e) & lenMask)
}
func (vm *Machine) entryHidden(e uint32) bool {
	return vm.entryFlagsLen(e)&FlagHidden != 0
}
func (vm *Machine) entryImmediate(e uint32) bool {
	return vm.entryFlagsLen(e)&FlagImmediate != 0
}

func (vm *Machine) entryNameAddr(e uint32) uint32 { return e + CellSize + 1 }

func (vm *Machine) entryName(e uint32) []byte {
	start := vm.entryNameAddr(e)
	n := vm.entryNameLen(e)
	return vm.data.buf[start : start+n]
}

// cfaOf computes a dictionary entry's code-field address: the link field
// (one cell) plus the flags+length byte plus the name bytes, rounded up to
// the next cell boundary.
func (vm *Machine) cfaOf(e uint32) uint32 {
	return align(e + CellSize + 1 + vm.entryNameLen(e))
}

// createEntry lays out a new dictionary header for the name at
// data[nameAddr:nameAddr+length], linking it onto LATEST and advancing
// HERE to the (cell-aligned) code-field address, which the caller must
// still fill in. Name length is clamped to the low-5-bit field per spec.
func (vm *Machine) createEntry(nameAddr uint32, length uint32) uint32 {
	if length > uint32(lenMask) {
		length = uint32(lenMask)
	}

	h := align(vm.here())
	entry := h
	vm.StoreCell(h, int32(vm.latest()))
	h += CellSize

	vm.StoreByte(h, byte(length))
	h++

	for i := uint32(0); i < length; i++ {
		vm.StoreByte(h+i, vm.FetchByte(nameAddr+i))
	}
	h += length

	h = align(h)
	vm.setHere(h)
	vm.setLatest(entry)
	return entry
}

// find walks the dictionary from LATEST looking for a non-hidden entry
// whose name matches data[nameAddr:nameAddr+length] exactly. Returns 0 (the
// reserved sentinel) if none is found. The most recent definition always
// wins ties, a natural consequence of walking from LATEST.
func (vm *Machine) find(nameAddr uint32, length uint32) uint32 {
	want := vm.data.buf[nameAddr : nameAddr+length]
	for e := vm.latest(); e != 0; e = vm.entryLink(e) {
		fl := vm.entryFlagsLen(e)
		if fl&FlagHidden != 0 {
			continue
		}
		if uint32(fl&lenMask) != length {
			continue
		}
		if bytesEqual(vm.entryName(e), want) {
			return e
		}
	}
	return 0
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// setHidden toggles the hidden bit on entry e.
func (vm *Machine) setHidden(e uint32) {
	addr := e + CellSize
	fl := vm.FetchByte(addr)
	vm.StoreByte(addr, fl^FlagHidden)
}

// setImmediate sets the immediate bit on entry e.
func (vm *Machine) setImmediate(e uint32) {
	addr := e + CellSize
	vm.StoreByte(addr, vm.FetchByte(addr)|FlagImmediate)
}

// comma appends one cell at HERE and advances HERE, the primitive behind
// FORTH's `,`.
func (vm *Machine) comma(v int32) {
	h := vm.here()
	vm.StoreCell(h, v)
	vm.setHere(h + CellSize)
}
