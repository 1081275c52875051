package vm

// bootstrap installs the primitive dictionary and the handful of compound
// words the rest of the system is built from. Everything else --
// control-flow compilers like IF/ELSE/THEN, printing words, and so on --
// lives in FORTH source loaded afterward, the same layering jonesforth-style
// interpreters use: the smallest possible kernel written in the host
// language, bootstrapping the rest of itself in itself.
func (vm *Machine) bootstrap() {
	entries := make(map[opcode]uint32, opMax)
	for op := opcode(1); op < opMax; op++ {
		if opcodeTable[op] == nil {
			continue // opInvalid and opDOCOL: never directly dictionary words
		}
		entries[op] = vm.defcode(opcodeNames[op], op)
	}

	vm.litCFA = vm.cfaOf(entries[opLIT])

	vm.setImmediate(entries[opTICK])
	vm.setImmediate(entries[opLBRACKET])
	vm.setImmediate(entries[opIMMEDIATE])

	colon := vm.defword(":", false,
		int32(vm.cfaOf(entries[opWORD])),
		int32(vm.cfaOf(entries[opCREATE])),
		int32(vm.cfaOf(entries[opDOCOLVAL])),
		int32(vm.cfaOf(entries[opCOMMA])),
		int32(vm.cfaOf(entries[opLATEST])),
		int32(vm.cfaOf(entries[opFETCH])),
		int32(vm.cfaOf(entries[opHIDDENOP])),
		int32(vm.cfaOf(entries[opRBRACKET])),
		int32(vm.cfaOf(entries[opEXIT])),
	)
	_ = colon

	vm.defword(";", true,
		int32(vm.cfaOf(entries[opLIT])),
		int32(vm.cfaOf(entries[opEXIT])),
		int32(vm.cfaOf(entries[opCOMMA])),
		int32(vm.cfaOf(entries[opLATEST])),
		int32(vm.cfaOf(entries[opFETCH])),
		int32(vm.cfaOf(entries[opHIDDENOP])),
		int32(vm.cfaOf(entries[opLBRACKET])),
		int32(vm.cfaOf(entries[opEXIT])),
	)

	vm.defword(">DFA", false,
		int32(vm.cfaOf(entries[opTCFA])),
		int32(vm.cfaOf(entries[op4PLUS])),
		int32(vm.cfaOf(entries[opEXIT])),
	)

	vm.defword("HIDE", false,
		int32(vm.cfaOf(entries[opWORD])),
		int32(vm.cfaOf(entries[opFIND])),
		int32(vm.cfaOf(entries[opHIDDENOP])),
		int32(vm.cfaOf(entries[opEXIT])),
	)

	// QUIT resets the return stack, then loops on INTERPRET forever via an
	// unconditional BRANCH back to INTERPRET's own cell -- offset -8 lands
	// exactly there regardless of where QUIT ends up in the dictionary,
	// since BRANCH computes its target from its own operand cell's address.
	// QUIT never EXITs; Run calls execute_cfa on it exactly once.
	quit := vm.defword("QUIT", false,
		int32(vm.cfaOf(entries[opR0])),
		int32(vm.cfaOf(entries[opRSPSTORE])),
		int32(vm.cfaOf(entries[opINTERPRET])),
		int32(vm.cfaOf(entries[opBRANCH])),
		-8,
	)
	vm.quitCFA = vm.cfaOf(quit)
}

// writeNameToWordBuf stages name into the WORD scratch buffer so createEntry
// can copy it into a fresh dictionary header; bootstrap runs before any
// FORTH-level parsing touches that buffer, so reusing it here is safe.
func (vm *Machine) writeNameToWordBuf(name string) uint32 {
	n := uint32(len(name))
	if n > wordBufLen {
		n = wordBufLen
	}
	for i := uint32(0); i < n; i++ {
		vm.StoreByte(AddrWord+i, name[i])
	}
	return n
}

// defcode installs a primitive as a dictionary entry whose code field holds
// op directly -- no DOCOL threading, no parameter field.
func (vm *Machine) defcode(name string, op opcode) uint32 {
	n := vm.writeNameToWordBuf(name)
	e := vm.createEntry(AddrWord, n)
	vm.comma(int32(op))
	return e
}

// defword installs a compound word: a DOCOL code field followed by body, a
// sequence of code-field addresses (and, immediately after a LIT cfa, the
// literal cell it fetches). defword appends nothing itself: callers pass the
// trailing EXIT cfa as part of body, except QUIT, whose body ends in a
// BRANCH back to its own INTERPRET cell.
func (vm *Machine) defword(name string, immediate bool, body ...int32) uint32 {
	n := vm.writeNameToWordBuf(name)
	e := vm.createEntry(AddrWord, n)
	vm.comma(int32(opDOCOL))
	for _, cell := range body {
		vm.comma(cell)
	}
	if immediate {
		vm.setImmediate(e)
	}
	return e
}
