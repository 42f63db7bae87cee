// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/sim6502/memory"
)

var (
	reOrigin     = regexp.MustCompile(`^\*\s*=\s*(\S*)$`)
	reExpression = regexp.MustCompile(`\$\(([^()]*)\)`)
	reWord       = regexp.MustCompile(`^\w+$`)
	reByteHex    = regexp.MustCompile(`(?i)^\$([0-9a-f]{1,2})$`)
	reByteDec    = regexp.MustCompile(`^([0-9]{1,3})$`)
	reWordHex    = regexp.MustCompile(`(?i)^\$([0-9a-f]{3,4})$`)
	reWordDec    = regexp.MustCompile(`^([0-9]{1,5})$`)
	reImmLabel   = regexp.MustCompile(`^#([<>])(\w+)$`)
	reIndexedX   = regexp.MustCompile(`(?i)^([\w$]+),X$`)
	reIndexedY   = regexp.MustCompile(`(?i)^([\w$]+),Y$`)
	reIndirect   = regexp.MustCompile(`^\(([\w$]+)\)$`)
	reIndirectX  = regexp.MustCompile(`(?i)^\(([\w$]+),X\)$`)
	reIndirectY  = regexp.MustCompile(`(?i)^\(([\w$]+)\),Y$`)
)

// Assembler is a two pass assembler for the 6502.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Symbols Symbols // Symbols of the last assembly.
	Labels  Labels  // Labels of the last assembly.

	predefine map[string]string // Predefines
	final     bool              // Set during the encoding pass.
}

// Predefine defines a symbol that source `define` directives may override.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// sanitize strips comments and surrounding whitespace.
func sanitize(text string) string {
	line, _, _ := strings.Cut(text, ";")
	return strings.TrimSpace(line)
}

// parseNumber parses `$hex` or decimal text.
func parseNumber(text string) (value int, err error) {
	var v uint64
	if hex, ok := strings.CutPrefix(text, "$"); ok {
		v, err = strconv.ParseUint(hex, 16, 32)
	} else {
		v, err = strconv.ParseUint(text, 10, 32)
	}
	if err != nil {
		err = ErrParseNumber(text)
		return
	}

	value = int(v)
	return
}

// evalExpression evaluates a compile time expression against the numeric
// symbols.
func (asm *Assembler) evalExpression(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for name, text := range asm.Symbols.All() {
		number, err := parseNumber(text)
		if err != nil {
			// Non-numeric symbols are not visible to expressions.
			continue
		}
		pred[name] = starlark.MakeInt(number)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok || value < 0 || value > 0xffff {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// expand replaces $(...) expressions with their hex values.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = reExpression.ReplaceAllStringFunc(line, func(match string) string {
		if err != nil {
			return match
		}
		expr := reExpression.FindStringSubmatch(match)[1]
		var value int64
		value, err = asm.evalExpression(expr)
		if err != nil {
			return match
		}
		if value <= 0xff {
			return fmt.Sprintf("$%02x", value)
		}
		return fmt.Sprintf("$%04x", value)
	})

	return
}

// substitute replaces a bare word with its symbol text.
func (asm *Assembler) substitute(text string) string {
	if reWord.MatchString(text) {
		if value, ok := asm.Symbols.Lookup(text); ok {
			return value
		}
	}
	return text
}

// byteOperand parses a zero page or immediate operand.
func (asm *Assembler) byteOperand(text string) (value byte, ok bool) {
	text = asm.substitute(text)

	var v uint64
	var err error
	if match := reByteHex.FindStringSubmatch(text); match != nil {
		v, err = strconv.ParseUint(match[1], 16, 8)
	} else if match := reByteDec.FindStringSubmatch(text); match != nil {
		v, err = strconv.ParseUint(match[1], 10, 8)
	} else {
		return
	}
	if err != nil {
		return
	}

	return byte(v), true
}

// wordOperand parses an absolute operand. Hex of one or two digits is a
// zero page operand, not a word.
func (asm *Assembler) wordOperand(text string) (value uint16, ok bool) {
	text = asm.substitute(text)

	var v uint64
	var err error
	if match := reWordHex.FindStringSubmatch(text); match != nil {
		v, err = strconv.ParseUint(match[1], 16, 16)
	} else if match := reWordDec.FindStringSubmatch(text); match != nil {
		v, err = strconv.ParseUint(match[1], 10, 16)
	} else {
		return
	}
	if err != nil {
		return
	}

	return uint16(v), true
}

// labelOperand resolves a label. Before the encoding pass an unknown label
// resolves to a placeholder.
func (asm *Assembler) labelOperand(text string) (value uint16, ok bool, err error) {
	if !reWord.MatchString(text) {
		return
	}
	value, ok = asm.Labels.AddressOf(text)
	if ok {
		return
	}
	if asm.final {
		err = ErrLabelMissing(text)
		return
	}

	return 0xffff, true, nil
}

// addressOperand parses a word or label operand.
func (asm *Assembler) addressOperand(text string) (value uint16, ok bool, err error) {
	value, ok = asm.wordOperand(text)
	if ok {
		return
	}

	return asm.labelOperand(text)
}

func encodeByte(code byte, value byte) []byte {
	return []byte{code, value}
}

func encodeWord(code byte, value uint16) []byte {
	return []byte{code, byte(value), byte(value >> 8)}
}

// matcher tries to encode an operand in one addressing mode.
type matcher func(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error)

func matchSingle(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
	if param == "" || strings.EqualFold(param, "A") {
		bytes = []byte{code}
	}
	return
}

func matchImmediate(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
	if match := reImmLabel.FindStringSubmatch(param); match != nil {
		value, ok, err := asm.labelOperand(match[2])
		if !ok || err != nil {
			return nil, err
		}
		if match[1] == ">" {
			value >>= 8
		}
		return encodeByte(code, byte(value)), nil
	}

	text, ok := strings.CutPrefix(param, "#")
	if !ok {
		return
	}
	value, ok := asm.byteOperand(text)
	if ok {
		bytes = encodeByte(code, value)
	}
	return
}

func matchZeroPage(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
	value, ok := asm.byteOperand(param)
	if ok {
		bytes = encodeByte(code, value)
	}
	return
}

// matchByteIndexed encodes a byte operand captured by a pattern.
func matchByteIndexed(re *regexp.Regexp) matcher {
	return func(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
		match := re.FindStringSubmatch(param)
		if match == nil {
			return
		}
		value, ok := asm.byteOperand(match[1])
		if ok {
			bytes = encodeByte(code, value)
		}
		return
	}
}

// matchWordIndexed encodes a word or label operand captured by a pattern.
func matchWordIndexed(re *regexp.Regexp) matcher {
	return func(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
		match := re.FindStringSubmatch(param)
		if match == nil {
			return
		}
		value, ok, err := asm.addressOperand(match[1])
		if ok && err == nil {
			bytes = encodeWord(code, value)
		}
		return
	}
}

func matchAbsolute(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
	if !strings.HasPrefix(param, "$") && !reWord.MatchString(param) {
		return
	}
	value, ok, err := asm.addressOperand(param)
	if ok && err == nil {
		bytes = encodeWord(code, value)
	}
	return
}

func matchBranch(asm *Assembler, param string, code byte, pc uint16) (bytes []byte, err error) {
	target, ok := asm.Labels.AddressOf(param)
	if !ok {
		target, ok = asm.wordOperand(param)
	}
	if !ok {
		var value byte
		value, ok = asm.byteOperand(param)
		target = uint16(value)
	}
	if !ok {
		if !reWord.MatchString(param) {
			return
		}
		if asm.final {
			err = ErrLabelMissing(param)
			return
		}
		bytes = encodeByte(code, 0)
		return
	}

	offset := int(target) - int(pc+2)
	if offset < -128 || offset > 127 {
		if asm.final {
			err = ErrBranchRange
			return
		}
		offset = 0
	}

	bytes = encodeByte(code, byte(offset))
	return
}

// matchers are tried in order; the first encoding wins.
var matchers = []struct {
	mode  AddressingMode
	match matcher
}{
	{MODE_SINGLE, matchSingle},
	{MODE_IMMEDIATE, matchImmediate},
	{MODE_ZERO_PAGE, matchZeroPage},
	{MODE_ZERO_PAGE_X, matchByteIndexed(reIndexedX)},
	{MODE_ZERO_PAGE_Y, matchByteIndexed(reIndexedY)},
	{MODE_ABSOLUTE_X, matchWordIndexed(reIndexedX)},
	{MODE_ABSOLUTE_Y, matchWordIndexed(reIndexedY)},
	{MODE_INDIRECT, matchWordIndexed(reIndirect)},
	{MODE_INDIRECT_X, matchByteIndexed(reIndirectX)},
	{MODE_INDIRECT_Y, matchByteIndexed(reIndirectY)},
	{MODE_ABSOLUTE, matchAbsolute},
	{MODE_BRANCH, matchBranch},
}

// parseOrigin parses a `*=` directive.
func parseOrigin(line string) (addr uint16, ok bool, err error) {
	if !strings.HasPrefix(line, "*") {
		return
	}
	ok = true

	match := reOrigin.FindStringSubmatch(line)
	if match == nil || len(match[1]) == 0 {
		err = ErrOriginSyntax
		return
	}
	value, err := parseNumber(match[1])
	if err != nil {
		err = ErrOriginSyntax
		return
	}
	if value > 0xffff {
		err = ErrOriginRange
		return
	}

	addr = uint16(value)
	return
}

// dcb encodes a byte list.
func dcb(param string) (bytes []byte, err error) {
	for _, item := range strings.Split(param, ",") {
		if len(item) == 0 {
			continue
		}
		var value int
		value, err = parseNumber(item)
		if err != nil {
			return
		}
		if value > 0xff {
			err = ErrByteRange
			return
		}
		bytes = append(bytes, byte(value))
	}

	return
}

// assembleLine encodes a sanitized, label free line at pc. The returned
// next address follows the encoded bytes, or is the new origin.
func (asm *Assembler) assembleLine(line string, pc uint16) (bytes []byte, next uint16, err error) {
	next = pc
	if len(line) == 0 {
		return
	}

	origin, ok, err := parseOrigin(line)
	if ok {
		if err == nil {
			next = origin
		}
		return
	}

	line, err = asm.expand(line)
	if err != nil {
		return
	}

	fields := strings.Fields(line)
	command := strings.ToUpper(fields[0])
	param := strings.Join(fields[1:], "")

	if command == "DCB" {
		bytes, err = dcb(param)
		next = pc + uint16(len(bytes))
		return
	}

	op, ok := Lookup(command)
	if !ok {
		err = ErrInstruction
		return
	}

	for _, m := range matchers {
		code, ok := op.Code(m.mode)
		if !ok {
			continue
		}
		bytes, err = m.match(asm, param, code, pc)
		if err != nil {
			bytes = nil
			return
		}
		if bytes != nil {
			next = pc + uint16(len(bytes))
			return
		}
	}

	err = ErrOperand
	return
}

// expandSymbols evaluates expression valued symbols in definition order.
func (asm *Assembler) expandSymbols() (index int, err error) {
	for name, value := range asm.Symbols.All() {
		if !strings.Contains(value, "$(") {
			continue
		}
		var expanded string
		expanded, err = asm.expand(value)
		if err != nil {
			index = asm.Symbols.entries[name].index
			return
		}
		asm.Symbols.replace(name, expanded)
	}

	return
}

// Assemble translates source text into a Program based at ADDR_START.
func (asm *Assembler) Assemble(input io.Reader) (prog *Program, err error) {
	var texts []string
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		texts = append(texts, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	var index int
	defer func() {
		if err != nil && index >= 0 && index < len(texts) {
			err = ErrSyntax{LineNo: index + 1, Line: texts[index], Err: err}
		}
	}()

	if asm.Verbose {
		log.Printf("Preprocessing ...")
	}
	lines := make([]string, len(texts))
	for n, text := range texts {
		lines[n] = sanitize(text)
	}

	asm.Symbols.Reset()
	asm.Symbols.Build(lines)
	for name, value := range asm.predefine {
		asm.Symbols.Define(name, value, -1)
	}
	index, err = asm.expandSymbols()
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("Indexing labels ...")
	}
	asm.final = false
	sizes := make([]int, len(lines))
	index, err = asm.Labels.IndexAll(lines, ADDR_START, &asm.Symbols, func(n int, line string, pc uint16) uint16 {
		bytes, next, _ := asm.assembleLine(line, pc)
		sizes[n] = len(bytes)
		return next
	})
	if err != nil {
		return
	}
	if asm.Verbose {
		log.Printf("Found %d labels.", asm.Labels.Len())
		log.Printf("Assembling code ...")
	}

	asm.final = true
	defer func() { asm.final = false }()

	prog = &Program{
		End: ADDR_START,
	}
	pc := ADDR_START
	for n, line := range lines {
		index = n
		_, rest := splitLabel(line)
		var bytes []byte
		var next uint16
		bytes, next, err = asm.assembleLine(rest, pc)
		if err != nil {
			prog = nil
			return
		}
		if int(pc)+len(bytes) > memory.SIZE {
			prog = nil
			err = ErrEmitRange
			return
		}
		if len(bytes) != sizes[n] {
			prog = nil
			err = ErrPhase
			return
		}
		if len(line) > 0 {
			prog.Lines = append(prog.Lines, Line{
				LineNo:  n + 1,
				Text:    texts[n],
				Address: pc,
				Bytes:   bytes,
			})
		}
		if len(bytes) > 0 {
			prog.Size += len(bytes)
			prog.End = next
		}
		pc = next
	}
	index = -1

	if prog.Size == 0 {
		prog = nil
		err = ErrNothingToAssemble
		return
	}

	prog.Labels = maps.Clone(asm.Labels.addresses)
	prog.Symbols = maps.Collect(asm.Symbols.All())

	if asm.Verbose {
		log.Printf("Code assembled successfully, %d bytes.", prog.Size)
	}

	return
}
