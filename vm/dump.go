package vm

import (
	"fmt"
	"io"
	"sort"
)

// Dump writes a human-readable listing of the machine's variables, data
// stack, return stack, and dictionary to w. Grounded on the same
// section-by-section memory walk the dictionary's own dumper uses, adapted
// to this VM's fixed variable addresses and cfa-threaded entries.
func (vm *Machine) Dump(w io.Writer) {
	fmt.Fprintf(w, "# VM dump\n")
	fmt.Fprintf(w, "  HERE=%d LATEST=%d STATE=%d BASE=%d\n", vm.here(), vm.latest(), vm.state(), vm.base())
	fmt.Fprintf(w, "  IP=%d SP=%d RSP=%d\n", vm.ip, vm.sp, vm.rsp)

	snap := vm.Snapshot()
	fmt.Fprintf(w, "  stack: %v\n", snap.Stack)
	fmt.Fprintf(w, "  return stack: %v\n", snap.ReturnStack)

	cfas := vm.dumpEntries(w)
	vm.dumpBody(w, cfas)
}

// dumpEntries lists every reachable dictionary entry, oldest first, and
// returns their code-field addresses sorted descending for dumpBody's
// nearest-preceding-word lookups.
func (vm *Machine) dumpEntries(w io.Writer) []uint32 {
	var entries []uint32
	for e := vm.latest(); e != 0; e = vm.entryLink(e) {
		entries = append(entries, e)
	}
	fmt.Fprintf(w, "# Dictionary (%d entries)\n", len(entries))

	cfas := make([]uint32, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		cfa := vm.cfaOf(e)
		cfas = append(cfas, cfa)
		flags := ""
		if vm.entryImmediate(e) {
			flags += " immediate"
		}
		if vm.entryHidden(e) {
			flags += " hidden"
		}
		fmt.Fprintf(w, "  @%-6d %-16s cfa=%-6d%s\n", e, vm.entryName(e), cfa, flags)
	}
	sort.Slice(cfas, func(i, j int) bool { return cfas[i] > cfas[j] })
	return cfas
}

// dumpBody prints, for every compound entry, the sequence of cfas in its
// parameter field, resolving each cfa back to the nearest dictionary word,
// plus the inline operand that follows LIT (a literal cell), BRANCH/0BRANCH
// (an offset cell) and LITSTRING (a length cell and the string bytes). A
// body ends at EXIT or at the start of the next newer entry (HERE for the
// latest one), so QUIT's endless loop body is bounded too.
func (vm *Machine) dumpBody(w io.Writer, cfasDesc []uint32) {
	fmt.Fprintf(w, "# Compiled bodies\n")
	end := vm.here()
	for e := vm.latest(); e != 0; end, e = e, vm.entryLink(e) {
		cfa := vm.cfaOf(e)
		if opcode(vm.FetchCell(cfa)) != opDOCOL {
			continue
		}
		fmt.Fprintf(w, "  %s:\n", vm.entryName(e))
		addr := cfa + CellSize
		for addr < end {
			w0 := uint32(vm.FetchCell(addr))
			op := opcode(vm.FetchCell(w0))
			fmt.Fprintf(w, "    @%-6d %s\n", addr, vm.describeCell(w0, cfasDesc))
			addr += CellSize
			switch op {
			case opLIT, opBRANCH, op0BRANCH:
				fmt.Fprintf(w, "    @%-6d literal %d\n", addr, vm.FetchCell(addr))
				addr += CellSize
			case opLITSTRING:
				n := uint32(vm.FetchCell(addr))
				fmt.Fprintf(w, "    @%-6d string %q\n", addr, vm.data.buf[addr+CellSize:addr+CellSize+n])
				addr = align(addr + CellSize + n)
			}
			if op == opEXIT {
				break
			}
		}
	}
}

func (vm *Machine) describeCell(cfa uint32, cfasDesc []uint32) string {
	if e := vm.nearestEntry(cfa, cfasDesc); e != 0 {
		name := vm.entryName(e)
		entryCfa := vm.cfaOf(e)
		if entryCfa == cfa {
			return string(name)
		}
		return fmt.Sprintf("%s+%d", name, cfa-entryCfa)
	}
	return fmt.Sprintf("%d", cfa)
}

// nearestEntry returns the entry whose cfa is the largest one <= cfa, via a
// sorted binary search over call targets.
func (vm *Machine) nearestEntry(cfa uint32, cfasDesc []uint32) uint32 {
	i := sort.Search(len(cfasDesc), func(i int) bool { return cfasDesc[i] <= cfa })
	if i >= len(cfasDesc) {
		return 0
	}
	for e := vm.latest(); e != 0; e = vm.entryLink(e) {
		if vm.cfaOf(e) == cfasDesc[i] {
			return e
		}
	}
	return 0
}
