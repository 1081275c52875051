package vm

// opcode is a dense enumeration of primitive operations. A cell can't hold
// a function pointer on a 64-bit host, so dictionary code fields store one
// of these instead, and execute_op dispatches through opcodeTable -- an
// integer-opcode-plus-dispatch-table shape in place of function pointers.
type opcode int32

const (
	// opInvalid is the reserved zero opcode. It is never installed in
	// opcodeTable, so reading it from a freshly-zeroed or corrupted code
	// field always raises OpcodeError -- the "uninitialized memory" trap
	// called for by the design notes.
	opInvalid opcode = iota

	opDOCOL // compound-word codeword; triggers the threading loop, not a table entry
	opEXIT

	// stack shuffle
	opDROP
	opSWAP
	opDUP
	opOVER
	opROT
	opNROT // -ROT
	op2DROP
	op2DUP
	op2SWAP
	opQDUP // ?DUP

	// arithmetic
	op1PLUS  // 1+
	op1MINUS // 1-
	op4PLUS  // 4+
	op4MINUS // 4-
	opADD
	opSUB
	opMUL
	opDIVMOD // /MOD

	// comparison
	opEQ
	opNEQ
	opLT
	opGT
	opLE
	opGE
	op0EQ
	op0NEQ
	op0LT
	op0GT
	op0LE
	op0GE

	// bitwise
	opAND
	opOR
	opXOR
	opINVERT

	// memory
	opSTORE  // !
	opFETCH  // @
	opADDSTORE // +!
	opSUBSTORE // -!
	opCSTORE // C!
	opCFETCH // C@
	opCMOVE
	opCFETCHCSTORE // C@C!

	// literals
	opLIT
	opLITSTRING

	// control transfer
	opBRANCH
	op0BRANCH

	// return-stack transfer
	opTOR   // >R
	opFROMR // R>
	opRSPFETCH
	opRSPSTORE
	opRDROP
	opDSPFETCH
	opDSPSTORE

	// variables / constants
	opSTATE
	opHERE
	opLATEST
	opS0
	opBASE
	opVERSION
	opR0
	opDOCOLVAL // named word "DOCOL": pushes opDOCOL's numeric value
	opFIMMED
	opFHIDDEN
	opFLENMASK

	// I/O
	opKEY
	opEMIT
	opWORD

	// parser support
	opNUMBER
	opINTERPRET

	// dictionary primitives
	opFIND
	opTCFA // >CFA
	opCREATE
	opCOMMA // ,
	opLBRACKET
	opRBRACKET
	opIMMEDIATE
	opHIDDENOP // toggles hidden bit on an entry
	opTICK     // '
	opCHAR
	opEXECUTE

	// process
	opBYE
	opUNUSED

	opMax
)

// Version is the numeric version pushed by the VERSION primitive.
const Version = 47
