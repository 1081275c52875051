package vm

// traceOp logs one dispatch step when tracing is enabled. Named after the
// opcode being entered, plus the code-field address it came from and the
// current stack depth, enough to follow a run by eye without a debugger.
func (vm *Machine) traceOp(op uint32, cfa uint32) {
	if vm.logf == nil {
		return
	}
	name := "?"
	switch {
	case op == uint32(opDOCOL):
		name = "DOCOL"
	case op < uint32(opMax) && opcodeNames[op] != "":
		name = opcodeNames[op]
	}
	vm.logf("%-12s cfa=%-6d ip=%-6d sp=%-6d rsp=%-6d depth=%d", name, cfa, vm.ip, vm.sp, vm.rsp, vm.depth())
}
