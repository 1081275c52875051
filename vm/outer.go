package vm

// isBlank reports whether b is a word delimiter: space and any control
// character, matching the classic FORTH convention of "anything <= space".
func isBlank(b byte) bool { return b <= ' ' }

// doWORD implements WORD: skip leading blanks and backslash-to-end-of-line
// comments, then collect bytes up to the next blank (or EOF) into the fixed
// word buffer at AddrWord; a word longer than the buffer aborts with a
// CapacityError. EOF while skipping invokes the OnEOF hook; EOF after a word
// has started simply ends that word. Returns the buffer's address and the
// collected length.
func (vm *Machine) doWORD() (uint32, uint32) {
skipBlanks:
	for {
		b, ok := vm.readByte()
		if !ok {
			vm.onEOF()
			return AddrWord, 0
		}
		switch {
		case b == '\\':
			for {
				b, ok := vm.readByte()
				if !ok {
					vm.onEOF()
					return AddrWord, 0
				}
				if b == '\n' {
					continue skipBlanks
				}
			}
		case isBlank(b):
			continue
		default:
			return vm.collectWord(b)
		}
	}
}

func (vm *Machine) collectWord(first byte) (uint32, uint32) {
	n := uint32(0)
	b := first
	for {
		if n == wordBufLen {
			vm.abort(CapacityError{Reason: "word longer than the WORD buffer"})
		}
		vm.StoreByte(AddrWord+n, b)
		n++
		next, ok := vm.readByte()
		if !ok {
			return AddrWord, n
		}
		if isBlank(next) {
			return AddrWord, n
		}
		b = next
	}
}

// parseNumber implements NUMBER: parse buf as a signed integer in the
// current BASE. digit value 0-9 comes from '0'-'9', 10-35 from 'A'-'Z'
// (uppercase only, matching the dictionary's own uppercase word names); the
// first byte that isn't a valid digit in the current base stops the scan.
// Returns the value parsed so far and the count of unparsed trailing bytes
// -- 0 means the whole buffer was a valid number.
func (vm *Machine) parseNumber(buf []byte) (int32, int) {
	if len(buf) == 0 {
		return 0, 0
	}

	base := vm.base()
	neg := false
	i := 0
	if buf[0] == '-' && len(buf) > 1 {
		neg = true
		i = 1
	}

	var val int32
	for ; i < len(buf); i++ {
		d, ok := digitValue(buf[i])
		if !ok || int32(d) >= base {
			break
		}
		val = val*base + int32(d)
	}
	if neg {
		val = -val
	}
	return val, len(buf) - i
}

func digitValue(b byte) (int, bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), true
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 10, true
	default:
		return 0, false
	}
}

// interpretOnce implements one pass of INTERPRET: parse the next word; if
// the dictionary has it, either run it now (interpreting, or the word is
// IMMEDIATE) or compile a call to it; otherwise try to parse it as a number,
// pushing it (interpreting) or compiling it as a literal (compiling).
// Neither a dictionary entry nor a valid number is a ParseError.
func (vm *Machine) interpretOnce() {
	addr, n := vm.doWORD()
	if n == 0 {
		return
	}

	if e := vm.find(addr, n); e != 0 {
		cfa := vm.cfaOf(e)
		if vm.state() == 0 || vm.entryImmediate(e) {
			vm.executeCFA(cfa)
		} else {
			vm.comma(int32(cfa))
		}
		return
	}

	word := append([]byte(nil), vm.data.buf[addr:addr+n]...)
	val, unparsed := vm.parseNumber(word)
	if unparsed != 0 {
		vm.abort(ParseError{Word: string(word), Unparsed: unparsed})
	}
	if vm.state() == 0 {
		vm.push(val)
	} else {
		vm.comma(int32(vm.litCFA))
		vm.comma(val)
	}
}
