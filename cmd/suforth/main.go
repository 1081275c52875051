// Command suforth runs the hosted FORTH virtual machine, loading the
// built-in prelude followed by standard input.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/kristopherjohnson/suwaneeforth/internal/fileinput"
	"github.com/kristopherjohnson/suwaneeforth/internal/logio"
	"github.com/kristopherjohnson/suwaneeforth/prelude"
	"github.com/kristopherjohnson/suwaneeforth/vm"
)

func main() {
	ctx := context.Background()

	logger := &logio.Logger{}
	logger.SetOutput(os.Stderr)

	var (
		timeout   time.Duration
		trace     bool
		dataSpace int
		retStack  int
		noPrelude bool
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.IntVar(&dataSpace, "dataspace", vm.DefaultDataSpaceSize, "data space size in bytes")
	flag.IntVar(&retStack, "retstack", vm.DefaultReturnStackSize, "return stack size in bytes")
	flag.BoolVar(&noPrelude, "no-prelude", false, "skip loading the built-in prelude")
	flag.Parse()

	in := &fileinput.Input{}
	if !noPrelude {
		in.Queue = append(in.Queue, fileinput.NewNamedReader("system.forth", prelude.Reader()))
	}
	in.Queue = append(in.Queue, fileinput.NewNamedReader("<stdin>", os.Stdin))

	opts := []vm.Option{
		vm.WithByteSource(in),
		vm.WithOutput(os.Stdout),
		vm.WithDataSpaceSize(dataSpace),
		vm.WithReturnStackSize(retStack),
	}
	if trace {
		opts = append(opts, vm.WithTrace(true), vm.WithLogf(logger.Tracef))
	}
	m := vm.New(opts...)

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := m.Run(ctx); err != nil {
		var buf strings.Builder
		m.Dump(&buf)
		logger.Printf("DUMP", "%s", buf.String())
		logger.Abortf("%+v", err)
	}
	os.Exit(logger.ExitCode())
}
