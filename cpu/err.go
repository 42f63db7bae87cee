package cpu

import (
	"errors"

	"github.com/ezrec/sim6502/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrStackEmpty = errors.New(f("stack emptied"))
	ErrStackFull  = errors.New(f("stack filled"))
	ErrInterrupt  = errors.New(f("interrupts are not supported"))

	// Assembler errors
	ErrLabelDuplicate    = errors.New(f("label already defined"))
	ErrLabelSymbol       = errors.New(f("label already used as a symbol"))
	ErrOriginRange       = errors.New(f("origin out of range"))
	ErrOriginSyntax      = errors.New(f("origin syntax"))
	ErrEmitRange         = errors.New(f("code past end of memory"))
	ErrBranchRange       = errors.New(f("branch out of range"))
	ErrByteRange         = errors.New(f("byte out of range"))
	ErrInstruction       = errors.New(f("instruction invalid"))
	ErrOperand           = errors.New(f("operand invalid for instruction"))
	ErrPhase             = errors.New(f("instruction size changed between passes"))
	ErrNothingToAssemble = errors.New(f("nothing to assemble"))
)

// ErrLabelMissing is an operand label that no line defines.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode is an execution fault at an opcode byte.
type ErrOpcode struct {
	Opcode  byte
	Address uint16
}

func (eo ErrOpcode) Error() string {
	return f("address $%04x - unknown opcode $%02x", eo.Address, eo.Opcode)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax is the first line that failed to assemble.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("syntax error line %d: %v: %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
