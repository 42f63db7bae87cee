package io

import (
	"errors"

	"github.com/ezrec/sim6502/translate"
)

var f = translate.From

var (
	// Device errors
	ErrKeyboardInput = errors.New(f("keyboard input"))
)
