package vm

// primFunc implements one primitive opcode. It operates purely through the
// machine's stacks, data space, and registers.
type primFunc func(vm *Machine)

var opcodeTable [opMax]primFunc
var opcodeNames [opMax]string

func defOp(op opcode, name string, fn primFunc) {
	opcodeTable[op] = fn
	opcodeNames[op] = name
}

func init() {
	opcodeNames[opDOCOL] = "DOCOL" // special-cased in executeOp, never in the table

	defOp(opEXIT, "EXIT", func(vm *Machine) { vm.ip = vm.rpop() })

	//// stack shuffle

	defOp(opDROP, "DROP", func(vm *Machine) { vm.pop() })
	defOp(opSWAP, "SWAP", func(vm *Machine) {
		a, b := vm.pop(), vm.pop()
		vm.push(a)
		vm.push(b)
	})
	defOp(opDUP, "DUP", func(vm *Machine) {
		a := vm.pick(0)
		vm.push(a)
	})
	defOp(opOVER, "OVER", func(vm *Machine) {
		a := vm.pick(1)
		vm.push(a)
	})
	defOp(opROT, "ROT", func(vm *Machine) {
		c, b, a := vm.pop(), vm.pop(), vm.pop()
		vm.push(b)
		vm.push(c)
		vm.push(a)
	})
	defOp(opNROT, "-ROT", func(vm *Machine) {
		c, b, a := vm.pop(), vm.pop(), vm.pop()
		vm.push(c)
		vm.push(a)
		vm.push(b)
	})
	defOp(op2DROP, "2DROP", func(vm *Machine) {
		vm.pop()
		vm.pop()
	})
	defOp(op2DUP, "2DUP", func(vm *Machine) {
		b, a := vm.pick(0), vm.pick(1)
		vm.push(a)
		vm.push(b)
	})
	defOp(op2SWAP, "2SWAP", func(vm *Machine) {
		d, c, b, a := vm.pop(), vm.pop(), vm.pop(), vm.pop()
		vm.push(c)
		vm.push(d)
		vm.push(a)
		vm.push(b)
	})
	defOp(opQDUP, "?DUP", func(vm *Machine) {
		a := vm.pick(0)
		if a != 0 {
			vm.push(a)
		}
	})

	//// arithmetic -- all wrap on overflow, per two's-complement int32 rules

	defOp(op1PLUS, "1+", func(vm *Machine) { vm.push(vm.pop() + 1) })
	defOp(op1MINUS, "1-", func(vm *Machine) { vm.push(vm.pop() - 1) })
	defOp(op4PLUS, "4+", func(vm *Machine) { vm.push(vm.pop() + 4) })
	defOp(op4MINUS, "4-", func(vm *Machine) { vm.push(vm.pop() - 4) })
	defOp(opADD, "+", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a + b)
	})
	defOp(opSUB, "-", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a - b)
	})
	defOp(opMUL, "*", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a * b)
	})
	defOp(opDIVMOD, "/MOD", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		if b == 0 {
			vm.abort(divideByZeroError{})
		}
		q := a / b // Go's / truncates toward zero, matching the spec's contract
		r := a % b
		vm.push(r)
		vm.push(q)
	})

	//// comparison -- 1 for true, 0 for false

	defOp(opEQ, "=", cmp(func(a, b int32) bool { return a == b }))
	defOp(opNEQ, "<>", cmp(func(a, b int32) bool { return a != b }))
	defOp(opLT, "<", cmp(func(a, b int32) bool { return a < b }))
	defOp(opGT, ">", cmp(func(a, b int32) bool { return a > b }))
	defOp(opLE, "<=", cmp(func(a, b int32) bool { return a <= b }))
	defOp(opGE, ">=", cmp(func(a, b int32) bool { return a >= b }))
	defOp(op0EQ, "0=", cmp0(func(a int32) bool { return a == 0 }))
	defOp(op0NEQ, "0<>", cmp0(func(a int32) bool { return a != 0 }))
	defOp(op0LT, "0<", cmp0(func(a int32) bool { return a < 0 }))
	defOp(op0GT, "0>", cmp0(func(a int32) bool { return a > 0 }))
	defOp(op0LE, "0<=", cmp0(func(a int32) bool { return a <= 0 }))
	defOp(op0GE, "0>=", cmp0(func(a int32) bool { return a >= 0 }))

	//// bitwise

	defOp(opAND, "AND", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a & b)
	})
	defOp(opOR, "OR", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a | b)
	})
	defOp(opXOR, "XOR", func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(a ^ b)
	})
	defOp(opINVERT, "INVERT", func(vm *Machine) { vm.push(^vm.pop()) })

	//// memory

	defOp(opSTORE, "!", func(vm *Machine) {
		addr, val := uint32(vm.pop()), vm.pop()
		vm.StoreCell(addr, val)
	})
	defOp(opFETCH, "@", func(vm *Machine) {
		addr := uint32(vm.pop())
		vm.push(vm.FetchCell(addr))
	})
	defOp(opADDSTORE, "+!", func(vm *Machine) {
		addr := uint32(vm.pop())
		val := vm.pop()
		vm.StoreCell(addr, vm.FetchCell(addr)+val)
	})
	defOp(opSUBSTORE, "-!", func(vm *Machine) {
		addr := uint32(vm.pop())
		val := vm.pop()
		vm.StoreCell(addr, vm.FetchCell(addr)-val)
	})
	defOp(opCSTORE, "C!", func(vm *Machine) {
		addr := uint32(vm.pop())
		val := vm.pop()
		vm.StoreByte(addr, byte(val))
	})
	defOp(opCFETCH, "C@", func(vm *Machine) {
		addr := uint32(vm.pop())
		vm.push(int32(vm.FetchByte(addr)))
	})
	defOp(opCMOVE, "CMOVE", func(vm *Machine) {
		n := uint32(vm.pop())
		dst := uint32(vm.pop())
		src := uint32(vm.pop())
		for i := uint32(0); i < n; i++ {
			vm.StoreByte(dst+i, vm.FetchByte(src+i))
		}
	})
	defOp(opCFETCHCSTORE, "C@C!", func(vm *Machine) {
		dst := uint32(vm.pop())
		src := uint32(vm.pop())
		vm.StoreByte(dst, vm.FetchByte(src))
		vm.push(int32(src + 1))
		vm.push(int32(dst + 1))
	})

	//// literals

	defOp(opLIT, "LIT", func(vm *Machine) {
		vm.push(vm.FetchCell(vm.ip))
		vm.ip += CellSize
	})
	defOp(opLITSTRING, "LITSTRING", func(vm *Machine) {
		n := uint32(vm.FetchCell(vm.ip))
		vm.ip += CellSize
		vm.push(int32(vm.ip))
		vm.push(int32(n))
		vm.ip = align(vm.ip + n)
	})

	//// control transfer

	defOp(opBRANCH, "BRANCH", func(vm *Machine) {
		off := vm.FetchCell(vm.ip)
		vm.ip = uint32(int64(vm.ip) + int64(off))
	})
	defOp(op0BRANCH, "0BRANCH", func(vm *Machine) {
		cond := vm.pop()
		if cond == 0 {
			off := vm.FetchCell(vm.ip)
			vm.ip = uint32(int64(vm.ip) + int64(off))
		} else {
			vm.ip += CellSize
		}
	})

	//// return-stack transfer

	defOp(opTOR, ">R", func(vm *Machine) { vm.rpush(uint32(vm.pop())) })
	defOp(opFROMR, "R>", func(vm *Machine) { vm.push(int32(vm.rpop())) })
	defOp(opRSPFETCH, "RSP@", func(vm *Machine) { vm.push(int32(vm.rsp)) })
	defOp(opRSPSTORE, "RSP!", func(vm *Machine) {
		addr := uint32(vm.pop())
		if addr%CellSize != 0 || addr > vm.ret.len() {
			vm.abort(CapacityError{Reason: "illegal RSP!"})
		}
		vm.rsp = addr
	})
	defOp(opRDROP, "RDROP", func(vm *Machine) { vm.rpop() })
	defOp(opDSPFETCH, "DSP@", func(vm *Machine) { vm.push(int32(vm.sp)) })
	defOp(opDSPSTORE, "DSP!", func(vm *Machine) {
		addr := uint32(vm.pop())
		if addr%CellSize != 0 || addr > vm.data.len() || addr < vm.here() {
			vm.abort(CapacityError{Reason: "illegal DSP!"})
		}
		vm.sp = addr
	})

	//// variables / constants -- these push an ADDRESS, not a value

	defOp(opSTATE, "STATE", func(vm *Machine) { vm.push(int32(AddrState)) })
	defOp(opHERE, "HERE", func(vm *Machine) { vm.push(int32(AddrHere)) })
	defOp(opLATEST, "LATEST", func(vm *Machine) { vm.push(int32(AddrLatest)) })
	defOp(opS0, "S0", func(vm *Machine) { vm.push(int32(AddrS0)) })
	defOp(opBASE, "BASE", func(vm *Machine) { vm.push(int32(AddrBase)) })
	defOp(opVERSION, "VERSION", func(vm *Machine) { vm.push(Version) })
	defOp(opR0, "R0", func(vm *Machine) { vm.push(int32(vm.ret.len())) })
	defOp(opDOCOLVAL, "DOCOL", func(vm *Machine) { vm.push(int32(opDOCOL)) })
	defOp(opFIMMED, "F_IMMED", func(vm *Machine) { vm.push(int32(FlagImmediate)) })
	defOp(opFHIDDEN, "F_HIDDEN", func(vm *Machine) { vm.push(int32(FlagHidden)) })
	defOp(opFLENMASK, "F_LENMASK", func(vm *Machine) { vm.push(int32(lenMask)) })

	//// I/O

	defOp(opKEY, "KEY", func(vm *Machine) {
		b, ok := vm.readByte()
		if !ok {
			vm.onEOF()
		}
		if vm.trace && vm.logf != nil {
			vm.logf("KEY -> %s", formatByte(b))
		}
		vm.push(int32(b))
	})
	defOp(opEMIT, "EMIT", func(vm *Machine) {
		b := byte(vm.pop())
		if vm.trace && vm.logf != nil {
			vm.logf("EMIT %s", formatByte(b))
		}
		vm.writeByte(b)
	})
	defOp(opWORD, "WORD", func(vm *Machine) {
		addr, n := vm.doWORD()
		vm.push(int32(addr))
		vm.push(int32(n))
	})

	//// parser support

	defOp(opNUMBER, "NUMBER", func(vm *Machine) {
		n := uint32(vm.pop())
		addr := uint32(vm.pop())
		val, unparsed := vm.parseNumber(vm.data.buf[addr : addr+n])
		vm.push(val)
		vm.push(int32(unparsed))
	})
	defOp(opINTERPRET, "INTERPRET", func(vm *Machine) { vm.interpretOnce() })

	//// dictionary primitives

	defOp(opFIND, "FIND", func(vm *Machine) {
		n := uint32(vm.pop())
		addr := uint32(vm.pop())
		vm.push(int32(vm.find(addr, n)))
	})
	defOp(opTCFA, ">CFA", func(vm *Machine) {
		e := uint32(vm.pop())
		vm.push(int32(vm.cfaOf(e)))
	})
	defOp(opCREATE, "CREATE", func(vm *Machine) {
		n := uint32(vm.pop())
		addr := uint32(vm.pop())
		vm.createEntry(addr, n)
	})
	defOp(opCOMMA, ",", func(vm *Machine) { vm.comma(vm.pop()) })
	defOp(opLBRACKET, "[", func(vm *Machine) { vm.setState(0) })
	defOp(opRBRACKET, "]", func(vm *Machine) { vm.setState(1) })
	defOp(opIMMEDIATE, "IMMEDIATE", func(vm *Machine) { vm.setImmediate(vm.latest()) })
	defOp(opHIDDENOP, "HIDDEN", func(vm *Machine) { vm.setHidden(uint32(vm.pop())) })
	defOp(opTICK, "'", func(vm *Machine) {
		addr, n := vm.doWORD()
		e := vm.find(addr, n)
		if e == 0 {
			vm.abort(ParseError{Word: string(vm.data.buf[addr : addr+n]), Unparsed: int(n)})
		}
		target := int32(vm.cfaOf(e))
		if vm.state() != 0 {
			vm.comma(int32(vm.litCFA))
			vm.comma(target)
		} else {
			vm.push(target)
		}
	})
	defOp(opCHAR, "CHAR", func(vm *Machine) {
		addr, n := vm.doWORD()
		if n == 0 {
			vm.abort(CapacityError{Reason: "CHAR of empty word"})
		}
		vm.push(int32(vm.FetchByte(addr)))
	})
	defOp(opEXECUTE, "EXECUTE", func(vm *Machine) {
		xt := uint32(vm.pop())
		vm.executeCFA(xt)
	})

	//// process

	defOp(opBYE, "BYE", func(vm *Machine) { vm.halt(nil) })
	defOp(opUNUSED, "UNUSED", func(vm *Machine) {
		vm.push(int32((vm.sp - vm.here()) / CellSize))
	})
}

func cmp(f func(a, b int32) bool) primFunc {
	return func(vm *Machine) {
		b, a := vm.pop(), vm.pop()
		vm.push(boolCell(f(a, b)))
	}
}

func cmp0(f func(a int32) bool) primFunc {
	return func(vm *Machine) {
		vm.push(boolCell(f(vm.pop())))
	}
}

func boolCell(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

type divideByZeroError struct{}

func (divideByZeroError) Error() string { return "division by zero" }
