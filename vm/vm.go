package vm

import (
	"context"
	"errors"
)

// Machine is one hosted 32-bit FORTH virtual machine: a data space (which
// also holds the downward-growing data stack), a separate return-stack byte
// arena, and the register set the inner interpreter threads through.
type Machine struct {
	data dataSpace
	ret  returnStack

	sp  uint32 // data-stack pointer, a byte address into data.buf
	rsp uint32 // return-stack pointer, a byte address into ret.buf
	ip  uint32 // instruction pointer, a code-field address

	trace bool
	logf  func(string, ...interface{})

	hooks Hooks
	out   writeFlusher

	litCFA  uint32 // cfa of LIT, cached at bootstrap for compiling literals in INTERPRET and in '
	quitCFA uint32 // cfa of QUIT, entered exactly once by Run

	// ctx is consulted only at readByte, the one genuine suspension point
	// the design notes call out -- QUIT itself loops forever in FORTH and
	// is never interrupted mid-primitive.
	ctx context.Context
}

// New builds a Machine ready to Run: a data space and return stack sized per
// the given options (or their defaults), the primitive dictionary installed,
// and the interpreter's own bootstrap words (: ; >DFA HIDE QUIT, among
// others) compiled in. Sizing options are applied before any space is
// allocated; everything else -- input, output, tracing -- is applied after
// bootstrap, so a replaced hook never races the dictionary's own setup.
func New(opts ...Option) *Machine {
	cfg := config{
		dataSpaceSize:   DefaultDataSpaceSize,
		returnStackSize: DefaultReturnStackSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	vm := &Machine{
		data: newDataSpace(cfg.dataSpaceSize),
		ret:  newReturnStack(cfg.returnStackSize),
	}
	vm.sp = vm.data.len()
	vm.rsp = vm.ret.len()
	vm.setHere(initialHere)
	vm.setLatest(0)
	vm.setState(0)
	vm.StoreCell(AddrBase, 10)
	vm.StoreCell(AddrS0, int32(vm.data.len()))

	vm.hooks = Hooks{
		ReadByte:   func() (byte, bool) { return 0, false },
		UnreadByte: func(byte) {},
		WriteByte:  func(byte) {},
		OnEOF:      func() { vm.halt(nil) },
		Abort: func(err error) {
			if vm.logf != nil {
				vm.logf("abort: %v", err)
			}
		},
	}
	vm.out = newWriteFlusher(discardWriter{})

	vm.bootstrap()

	cfg.apply(vm)
	return vm
}

// Run drives the interpreter (QUIT's REPL loop: WORD, INTERPRET, repeat)
// until EOF, BYE, ctx is cancelled, or a fatal error aborts the machine. A
// clean EOF or BYE is reported as a nil error; everything else -- a cancelled
// context, a stack or memory violation, an unknown opcode, a genuine bug
// recovered from a panic -- is reported as a non-nil one.
func (vm *Machine) Run(ctx context.Context) error {
	return runRecovered(func() error { return vm.loop(ctx) })
}

// loop enters QUIT exactly once, matching the design notes: QUIT loops on
// INTERPRET forever in FORTH itself and never returns except through BYE,
// EOF, or abort.
func (vm *Machine) loop(ctx context.Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ae, ok := r.(errAbort); ok {
			err = ae.error
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, errHalt) {
			err = nil
			return
		}
		panic(r)
	}()

	vm.ctx = ctx
	vm.executeCFA(vm.quitCFA)
	return nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
