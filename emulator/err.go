package emulator

import (
	"github.com/ezrec/sim6502/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrAddressUnresolved is a goto target that is neither a label nor an
// address.
type ErrAddressUnresolved string

func (err ErrAddressUnresolved) Error() string {
	return f("unable to find or parse address %v", string(err))
}
