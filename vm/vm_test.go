package vm_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristopherjohnson/suwaneeforth/internal/fileinput"
	"github.com/kristopherjohnson/suwaneeforth/internal/logio"
	"github.com/kristopherjohnson/suwaneeforth/prelude"
	"github.com/kristopherjohnson/suwaneeforth/vm"
)

// forthCase is a fluent builder for running a snippet of FORTH source
// against a fresh machine and asserting on the result: noPrelude/
// expectStack/expectMemAt/expectDump/withTimeout chain onto a name and a
// source string, working against this VM's byte-addressed data space and
// cfa-threaded dictionary.
type forthCase struct {
	name    string
	src     string
	prelude bool
	timeout time.Duration
	wantErr bool

	expect []func(t *testing.T, m *vm.Machine, out string)
}

func newCase(name, src string) forthCase {
	return forthCase{name: name, src: src, prelude: true}
}

// noPrelude runs src against the bare primitive dictionary bootstrap
// installs, with no compiled words from system.forth -- needed whenever a
// test wants primitive-level stack effects without the prelude's own
// definitions in the way.
func (c forthCase) noPrelude() forthCase {
	c.prelude = false
	return c
}

// withTimeout bounds the run with a context timeout, for cases that expect
// a blocked read to abort rather than complete.
func (c forthCase) withTimeout(d time.Duration) forthCase {
	c.timeout = d
	return c
}

func (c forthCase) expectError() forthCase {
	c.wantErr = true
	return c
}

func (c forthCase) expectStack(values ...int32) forthCase {
	c.expect = append(c.expect, func(t *testing.T, m *vm.Machine, out string) {
		if values == nil {
			values = []int32{}
		}
		assert.Equal(t, values, m.Snapshot().Stack, "expected stack")
	})
	return c
}

func (c forthCase) expectOutput(s string) forthCase {
	c.expect = append(c.expect, func(t *testing.T, m *vm.Machine, out string) {
		assert.Equal(t, s, out, "expected output")
	})
	return c
}

// expectMemAt checks cell-granularity values starting at addr, read
// through FetchCell.
func (c forthCase) expectMemAt(addr uint32, values ...int32) forthCase {
	c.expect = append(c.expect, func(t *testing.T, m *vm.Machine, out string) {
		got := make([]int32, len(values))
		for i := range got {
			got[i] = m.FetchCell(addr + uint32(i)*vm.CellSize)
		}
		assert.Equal(t, values, got, "expected memory values @%d", addr)
	})
	return c
}

// expectDump asserts that Dump's output contains substr rather than
// requiring an exact transcript match, since this VM's dictionary (and so
// Dump's entry addresses) shifts depending on whether the prelude loaded.
func (c forthCase) expectDump(substr string) forthCase {
	c.expect = append(c.expect, func(t *testing.T, m *vm.Machine, out string) {
		var b strings.Builder
		m.Dump(&b)
		assert.Contains(t, b.String(), substr, "expected dump to mention %q", substr)
	})
	return c
}

func (c forthCase) run(t *testing.T) {
	t.Helper()

	var out strings.Builder
	var opts []vm.Option
	if c.prelude {
		in := &fileinput.Input{
			Queue: []io.Reader{
				fileinput.NewNamedReader("system.forth", prelude.Reader()),
				fileinput.NewNamedReader(c.name, strings.NewReader(c.src)),
			},
		}
		opts = append(opts, vm.WithByteSource(in))
	} else {
		opts = append(opts, vm.WithInput(strings.NewReader(c.src)))
	}
	opts = append(opts, vm.WithOutput(&out))
	m := vm.New(opts...)

	ctx := context.Background()
	if c.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := m.Run(ctx)
	if c.wantErr {
		assert.Error(t, err)
	} else {
		require.NoError(t, err, "snapshot:\n%s", m.Snapshot())
	}
	for _, expect := range c.expect {
		expect(t, m, out.String())
	}
}

func TestFreshMachineInvariants(t *testing.T) {
	m := vm.New()
	snap := m.Snapshot()

	assert.Greater(t, snap.Here, uint32(0))
	assert.Greater(t, snap.Latest, uint32(0))
	assert.Equal(t, int32(0), snap.State)
	assert.Equal(t, int32(10), snap.Base)
	assert.Equal(t, vm.DefaultDataSpaceSize, int(snap.SP))
	assert.Equal(t, vm.DefaultReturnStackSize, int(snap.RSP))
	assert.Empty(t, snap.Stack)
	assert.Empty(t, snap.ReturnStack)
}

func TestSnapshotString(t *testing.T) {
	s := vm.New().Snapshot().String()
	assert.Contains(t, s, "HERE=")
	assert.Contains(t, s, "stack: []")
	assert.Contains(t, s, "return stack: []")
}

func TestStackShuffle(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []int32
	}{
		{"DUP", "1 2 DUP", []int32{2, 2, 1}},
		{"DROP", "1 2 DROP", []int32{1}},
		{"SWAP", "1 2 SWAP", []int32{1, 2}},
		{"OVER", "1 2 OVER", []int32{1, 2, 1}},
		{"ROT", "1 2 3 ROT", []int32{1, 3, 2}},
		{"-ROT", "1 2 3 -ROT", []int32{2, 1, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			newCase(tc.name, tc.src).noPrelude().expectStack(tc.want...).run(t)
		})
	}
}

func TestArithmeticWraparound(t *testing.T) {
	newCase("underflow", "-2147483648 1 -").noPrelude().
		expectStack(2147483647).run(t)
	newCase("overflow", "2147483647 1 +").noPrelude().
		expectStack(-2147483648).run(t)
}

func TestDivMod(t *testing.T) {
	newCase("divmod", "30 7 /MOD").noPrelude().expectStack(4, 2).run(t)
}

func TestBitwise(t *testing.T) {
	newCase("and", "6 3 AND").noPrelude().expectStack(2).run(t)
	newCase("or", "6 3 OR").noPrelude().expectStack(7).run(t)
	newCase("xor", "6 3 XOR").noPrelude().expectStack(5).run(t)
	newCase("invert", "0 INVERT").noPrelude().expectStack(-1).run(t)
}

func TestColonDefinitionAddsDictionaryEntry(t *testing.T) {
	before := vm.New()
	require.NoError(t, before.Run(context.Background()))
	latestBefore := before.Snapshot().Latest

	var out strings.Builder
	after := vm.New(vm.WithInput(strings.NewReader(": DOUBLED DUP + ;")), vm.WithOutput(&out))
	require.NoError(t, after.Run(context.Background()))
	snap := after.Snapshot()
	assert.Greater(t, snap.Latest, latestBefore)
	assert.Equal(t, int32(0), snap.State, "; must leave STATE interpreting")
}

// TestFindAndCFA parses the name DROP into the word buffer with WORD, looks
// it up with FIND, and checks that >CFA lands exactly 12 bytes past the
// entry address: a 4-byte link, a 1-byte flags+length, the 4-byte name
// "DROP", padded to the next cell boundary. It also checks that the code
// cell at that address is a stable, word-specific value: looking DROP up a
// second time yields the same code cell contents, while looking up a
// different primitive yields a different one. WORD and FIND run inside the
// compiled helper FINDW, since at top level the interpreter's own parse of
// "FIND" would overwrite the word buffer WORD just filled.
func TestFindAndCFA(t *testing.T) {
	newCase("find-cfa-offset", `
		: FINDW WORD FIND ;
		FINDW DROP
		DUP >CFA
		SWAP 12 + =
	`).noPrelude().expectStack(1).run(t)

	newCase("cfa-code-cell-stable", `
		: FINDW WORD FIND ;
		FINDW DROP >CFA @
		FINDW DROP >CFA @
		=
	`).noPrelude().expectStack(1).run(t)

	newCase("cfa-code-cell-distinguishes-words", `
		: FINDW WORD FIND ;
		FINDW DROP >CFA @
		FINDW SWAP >CFA @
		=
	`).noPrelude().expectStack(0).run(t)
}

// TestCreateRoundTrip confirms FIND returns the reserved 0 sentinel for a
// name with no entry yet, and a nonzero entry address once CREATE has
// installed one. As in TestFindAndCFA, WORD is paired with FIND or CREATE
// inside a compiled helper so the word buffer still holds FRESHWORD.
func TestCreateRoundTrip(t *testing.T) {
	newCase("find-before-create", ": FINDW WORD FIND ; FINDW FRESHWORD").
		noPrelude().expectStack(0).run(t)

	c := newCase("find-after-create", `
		: MAKEW WORD CREATE ;
		: FINDW WORD FIND ;
		MAKEW FRESHWORD
		FINDW FRESHWORD
	`).noPrelude()
	c.expect = append(c.expect, func(t *testing.T, m *vm.Machine, out string) {
		stack := m.Snapshot().Stack
		require.Len(t, stack, 1)
		assert.NotZero(t, stack[0], "FIND should return a nonzero entry address after CREATE")
	})
	c.run(t)
}

func TestCompileAndRun(t *testing.T) {
	newCase("compile-and-run", ": DOUBLE DUP + ; 21 DOUBLE .").
		expectOutput("42 ").run(t)
}

func TestCompileAndRunNegativeAndHex(t *testing.T) {
	newCase("negative", "-5 .").expectOutput("-5 ").run(t)
	newCase("hex", "255 16 BASE ! . A BASE !").expectOutput("FF ").run(t)
}

func TestControlFlowCompilers(t *testing.T) {
	newCase("if-else", `
		: SIGN DUP 0< IF ." neg" ELSE ." non-neg" THEN ;
		-3 SIGN CR 3 SIGN
	`).expectOutput("neg\nnon-neg").run(t)

	newCase("begin-until", `
		: COUNTDOWN ( n -- ) BEGIN DUP . 1- DUP 0= UNTIL DROP ;
		3 COUNTDOWN
	`).expectOutput("3 2 1 ").run(t)
}

func TestVariableAndConstant(t *testing.T) {
	newCase("variable-constant", `
		42 CONSTANT ANSWER
		VARIABLE COUNTER
		5 COUNTER !
		ANSWER . COUNTER @ .
	`).expectOutput("42 5 ").run(t)
}

func TestRecurse(t *testing.T) {
	newCase("recurse", `
		: FACT ( n -- n! ) DUP 1 > IF DUP 1- RECURSE * THEN ;
		5 FACT .
	`).expectOutput("120 ").run(t)
}

// TestMemoryAccess exercises !, @, C!, C@, +!, -! directly against a
// scratch cell past HERE.
func TestMemoryAccess(t *testing.T) {
	newCase("cell-store-fetch", "100 HERE @ 200 + ! HERE @ 200 + @").
		noPrelude().expectStack(100).run(t)

	newCase("byte-store-fetch", "65 HERE @ 200 + C! HERE @ 200 + C@").
		noPrelude().expectStack(65).run(t)

	newCase("add-store", "HERE @ 200 + DUP 10 SWAP ! DUP 5 SWAP +! @").
		noPrelude().expectStack(15).run(t)

	newCase("sub-store", "HERE @ 200 + DUP 10 SWAP ! DUP 3 SWAP -! @").
		noPrelude().expectStack(7).run(t)
}

// TestExpectMemAt exercises the forthCase builder's own cell-granularity
// memory assertion against BASE's fixed, exported cell address.
func TestExpectMemAt(t *testing.T) {
	newCase("mem-at", "16 BASE !").noPrelude().
		expectMemAt(vm.AddrBase, 16).run(t)
}

// TestCMOVE copies two bytes from one scratch region to another with the
// CMOVE primitive, then reads them back with C@ to confirm the copy landed.
func TestCMOVE(t *testing.T) {
	newCase("cmove", `
		HERE @
		DUP 65 OVER C!
		DUP 1+ 66 OVER C!
		DROP
		100 + 2 CMOVE
		HERE @ 100 + C@
		HERE @ 101 + C@
	`).noPrelude().expectStack(66, 65).run(t)
}

// TestCFetchCStore exercises C@C! ( src dst -- src+1 dst+1 ), the
// single-byte-copy-and-advance primitive that's CMOVE's building block.
func TestCFetchCStore(t *testing.T) {
	newCase("c@c!", `
		65 HERE @ C!
		HERE @ HERE @ 300 +
		C@C! 2DROP
		HERE @ 300 + C@
	`).noPrelude().expectStack(65).run(t)
}

// TestExecute confirms EXECUTE calls a code-field address fetched with '
// exactly as if the word had been typed directly.
func TestExecute(t *testing.T) {
	newCase("execute", "3 4 ' + EXECUTE").noPrelude().expectStack(7).run(t)
}

// TestCHAR confirms CHAR reads the next word from the input and pushes its
// first byte's value.
func TestCHAR(t *testing.T) {
	newCase("char", "CHAR A").noPrelude().expectStack(65).run(t)
}

// TestVersion confirms VERSION pushes the VM's version constant.
func TestVersion(t *testing.T) {
	newCase("version", "VERSION").noPrelude().expectStack(vm.Version).run(t)
}

// TestUnused confirms UNUSED reports the free cell count between HERE and
// the (empty) data stack's pointer, computed against a baseline snapshot
// taken before UNUSED executes (since UNUSED's own result push moves SP).
func TestUnused(t *testing.T) {
	m := vm.New(vm.WithInput(strings.NewReader("UNUSED")))
	before := m.Snapshot()
	require.NoError(t, m.Run(context.Background()))

	want := int32((vm.DefaultDataSpaceSize - int(before.Here)) / vm.CellSize)
	assert.Equal(t, []int32{want}, m.Snapshot().Stack)
}

// TestReturnStackTransfer exercises >R, R>, RSP@, RSP!, and R0 together:
// >R should move a cell onto the return stack (RSP@ drops by one cell),
// and RSP! should be able to restore RSP back to R0, the return stack's
// base address.
func TestReturnStackTransfer(t *testing.T) {
	newCase("to-r-from-r-roundtrip", "9 >R R>").noPrelude().expectStack(9).run(t)

	newCase("rsp-after-tor", "RSP@ 9 >R RSP@ -").noPrelude().expectStack(4).run(t)

	newCase("rsp-store-restores-r0", "RSP@ 9 >R RSP! RSP@ R0 =").
		noPrelude().expectStack(1).run(t)
}

// TestDataStackTransfer exercises DSP@/DSP! round-tripping the data-stack
// pointer without disturbing the cells already on it.
func TestDataStackTransfer(t *testing.T) {
	newCase("dsp-roundtrip", "5 6 7 DSP@ DSP!").noPrelude().
		expectStack(7, 6, 5).run(t)
}

// TestDump confirms Dump's dictionary walk mentions a word compiled during
// the run, the diagnostic path cmd/suforth feeds a fatal abort through.
func TestDump(t *testing.T) {
	newCase("dump", ": DOUBLE DUP + ;").expectDump("DOUBLE").run(t)
}

// TestTeeOutputThroughLogWriter confirms internal/logio.Writer adapts a
// formatted logging function into an io.Writer, by teeing EMIT's output
// through it alongside the primary sink.
func TestTeeOutputThroughLogWriter(t *testing.T) {
	var lines []string
	tee := &logio.Writer{Logf: func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}}

	var out strings.Builder
	in := &fileinput.Input{
		Queue: []io.Reader{
			fileinput.NewNamedReader("system.forth", prelude.Reader()),
			fileinput.NewNamedReader(t.Name(), strings.NewReader("42 . CR")),
		},
	}
	m := vm.New(vm.WithByteSource(in), vm.WithOutput(&out), vm.WithTee(tee))
	require.NoError(t, m.Run(context.Background()))

	require.NotEmpty(t, lines)
	assert.Equal(t, "42 ", lines[0])
}

// TestTraceLogging confirms EMIT emits a trace line through WithLogf when
// WithTrace is set.
func TestTraceLogging(t *testing.T) {
	var lines []string
	var out strings.Builder
	m := vm.New(
		vm.WithInput(strings.NewReader("65 EMIT")),
		vm.WithOutput(&out),
		vm.WithTrace(true),
		vm.WithLogf(func(format string, args ...interface{}) {
			lines = append(lines, fmt.Sprintf(format, args...))
		}),
	)
	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, "A", out.String())

	var sawEmit bool
	for _, l := range lines {
		if strings.Contains(l, "EMIT") {
			sawEmit = true
		}
	}
	assert.True(t, sawEmit, "expected an EMIT trace line, got %v", lines)
}

// infiniteBlanks never runs out of input (and never blocks): every Read
// fills the buffer with spaces, so WORD's skip-blanks loop calls readByte
// forever, giving a cancelled context many chances to be noticed between
// calls without needing a real blocking reader.
type infiniteBlanks struct{}

func (infiniteBlanks) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func TestTimeoutCancelsBlockedRead(t *testing.T) {
	m := vm.New(vm.WithInput(infiniteBlanks{}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, m.Run(ctx))
}
