package vm

import (
	"fmt"
	"runtime/debug"
)

// runRecovered runs f to completion, converting a panic or a runtime.Goexit
// escaping it into a non-nil error instead of letting either take down the
// process -- Run's last line of defense against a bug in the inner
// interpreter.
func runRecovered(f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExit(errch)
		defer recoverPanic(errch)
		errch <- f()
	}()
	return <-errch
}

func recoverPanic(errch chan<- error) {
	var pe panicError
	if pe.e = recover(); pe.e != nil {
		pe.stack = debug.Stack()
		select {
		case errch <- pe:
		default:
		}
	}
}

func recoverExit(errch chan<- error) {
	select {
	case errch <- errGoexit{}:
	default:
		// the happy path already sent a (maybe nil) error
	}
}

type panicError struct {
	e     interface{}
	stack []byte
}

func (pe panicError) Error() string { return fmt.Sprint(pe) }

func (pe panicError) Format(f fmt.State, c rune) {
	fmt.Fprintf(f, "forth paniced: %v", pe.e)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\npanic stack: %s", pe.stack)
	}
}

func (pe panicError) Unwrap() error {
	err, _ := pe.e.(error)
	return err
}

type errGoexit struct{}

func (errGoexit) Error() string { return "forth called runtime.Goexit" }
