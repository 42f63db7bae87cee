package cpu

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sim6502/memory"
)

func assemble(t *testing.T, program ...string) (prog *Program) {
	asm := &Assembler{}
	prog, err := asm.Assemble(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"LDA #$01",
		"STA $0200",
		"BRK",
	)

	assert.Equal(6, prog.Size)
	assert.Equal(uint16(0x0606), prog.End)
	assert.Equal([]byte{0xa9, 0x01, 0x8d, 0x00, 0x02, 0x00}, prog.Binary())
	assert.Equal(3, len(prog.Lines))
	assert.Equal(2, prog.Lines[1].LineNo)
	assert.Equal(uint16(0x0602), prog.Lines[1].Address)
	assert.Equal("STA $0200", prog.Lines[1].Text)
}

func TestAssembleModes(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		line  string
		bytes []byte
	}{
		{"LDA #$01", []byte{0xa9, 0x01}},
		{"lda #10", []byte{0xa9, 0x0a}},
		{"LDA 10", []byte{0xa5, 0x0a}},
		{"LDA 300", []byte{0xad, 0x2c, 0x01}},
		{"LDA $0010", []byte{0xad, 0x10, 0x00}},
		{"LDA $10,X", []byte{0xb5, 0x10}},
		{"LDX $10,Y", []byte{0xb6, 0x10}},
		{"LDA $1234,X", []byte{0xbd, 0x34, 0x12}},
		{"LDA $1234,Y", []byte{0xb9, 0x34, 0x12}},
		{"LDA ($20,X)", []byte{0xa1, 0x20}},
		{"LDA ($20),Y", []byte{0xb1, 0x20}},
		{"LDA ( $20 ) , y", []byte{0xb1, 0x20}},
		{"STA $0200,X", []byte{0x9d, 0x00, 0x02}},
		{"JMP ($12ff)", []byte{0x6c, 0xff, 0x12}},
		{"ASL", []byte{0x0a}},
		{"ASL A", []byte{0x0a}},
		{"lsr a", []byte{0x4a}},
		{"INC $10", []byte{0xe6, 0x10}},
		{"DCB $01,2,,$ff", []byte{0x01, 0x02, 0xff}},
		{"  NOP   ; comment", []byte{0xea}},
	}

	for _, entry := range table {
		prog := assemble(t, entry.line)
		assert.Equal(entry.bytes, prog.Binary(), entry.line)
	}
}

func TestAssembleLabels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"start:",
		"  LDX #$00",
		"loop: INX",
		"  CPX #$10",
		"  BNE loop",
		"  JMP start",
	)

	assert.Equal(map[string]uint16{"start": 0x0600, "loop": 0x0602}, prog.Labels)
	assert.Equal([]byte{
		0xa2, 0x00,
		0xe8,
		0xe0, 0x10,
		0xd0, 0xfb,
		0x4c, 0x00, 0x06,
	}, prog.Binary())
}

func TestAssembleBranch(t *testing.T) {
	assert := assert.New(t)

	// Backwards
	prog := assemble(t, "loop:", strings.Repeat("NOP\n", 16)+"BNE loop")
	line, ok := prog.LineAt(0x0610)
	if assert.True(ok) {
		assert.Equal([]byte{0xd0, 0xee}, line.Bytes)
	}

	// Forwards
	prog = assemble(t,
		"BEQ done",
		"NOP",
		"done:",
		"BRK",
	)
	assert.Equal([]byte{0xf0, 0x01, 0xea, 0x00}, prog.Binary())

	// Numeric target
	prog = assemble(t, "BCC $0600")
	assert.Equal([]byte{0x90, 0xfe}, prog.Binary())
}

func TestAssembleLoHi(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"LDA #<data",
		"LDX #>data",
		"BRK",
		"data:",
		"DCB $01,2,$ff",
	)

	assert.Equal([]byte{0xa9, 0x05, 0xa2, 0x06, 0x00, 0x01, 0x02, 0xff}, prog.Binary())
}

func TestAssembleSymbols(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"define sprite $10",
		"define sprite $20",
		"LDA sprite",
		"STA sprite,X",
		"LDA #sprite",
	)

	assert.Equal("$10", prog.Symbols["sprite"])
	assert.Equal([]byte{0xa5, 0x10, 0x95, 0x10, 0xa9, 0x10}, prog.Binary())
}

func TestAssembleExpression(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"define base $10",
		"define next $(base + 2)",
		"LDA #$(next * 2)",
		"STA $(0x200 + base)",
	)

	assert.Equal("$12", prog.Symbols["next"])
	assert.Equal([]byte{0xa9, 0x24, 0x8d, 0x10, 0x02}, prog.Binary())
}

func TestAssembleOrigin(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"*=$0700",
		"LDA #1",
		"* = 2048",
		"NOP",
	)

	assert.Equal(3, prog.Size)
	assert.Equal(uint16(0x0801), prog.End)
	line, ok := prog.LineAt(0x0700)
	if assert.True(ok) {
		assert.Equal(2, line.LineNo)
	}
	line, ok = prog.LineAt(0x0800)
	if assert.True(ok) {
		assert.Equal("NOP", line.Text)
	}
}

func TestAssemblePredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("sysRandom", "$fe")

	prog, err := asm.Assemble(strings.NewReader("LDA sysRandom"))
	assert.NoError(err)
	assert.Equal([]byte{0xa5, 0xfe}, prog.Binary())

	prog, err = asm.Assemble(strings.NewReader("define sysRandom $10\nLDA sysRandom"))
	assert.NoError(err)
	assert.Equal([]byte{0xa5, 0x10}, prog.Binary())
}

func TestAssembleErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		program string
		lineno  int
		err     error
	}{
		{"FOO", 1, ErrInstruction},
		{"LDA #$100", 1, ErrOperand},
		{"NOP\nLDA #$01\nBOGUS $10", 3, ErrInstruction},
		{"a:\na:", 2, ErrLabelDuplicate},
		{"define a 1\na: NOP", 2, ErrLabelSymbol},
		{"*=$10000\nNOP", 1, ErrOriginRange},
		{"*=zz\nNOP", 1, ErrOriginSyntax},
		{"NOP\n*=$ffff\nLDA $1234", 3, ErrEmitRange},
		{"JMP nowhere", 1, ErrLabelMissing("nowhere")},
		{"BNE nowhere", 1, ErrLabelMissing("nowhere")},
		{"DCB $100", 1, ErrByteRange},
		{"DCB x", 1, ErrParseNumber("x")},
		{"loop:\n" + strings.Repeat("NOP\n", 130) + "BNE loop", 132, ErrBranchRange},
		{"LDA #$(1 +)", 1, ErrParseExpression("1 +")},
		{"CLI $10", 1, ErrOperand},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Assemble(strings.NewReader(entry.program))
		assert.Nil(prog, entry.program)
		assert.ErrorIs(err, entry.err, entry.program)

		var syntax ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.program) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.program)
		}
	}
}

func TestAssembleTopOfMemory(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"NOP",
		"*=$fffe",
		"DCB $00,$06",
	)

	assert.Equal(3, prog.Size)
	assert.Equal(uint16(0x0000), prog.End)
	assert.Equal(0x10000-int(ADDR_START), prog.Extent())
	bins := prog.Binary()
	if assert.Len(bins, prog.Extent()) {
		assert.Equal(byte(0xea), bins[0])
		assert.Equal([]byte{0x00, 0x06}, bins[len(bins)-2:])
	}

	line, ok := prog.LineAt(0xffff)
	if assert.True(ok) {
		assert.Equal(3, line.LineNo)
	}
}

func TestAssembleNothing(t *testing.T) {
	assert := assert.New(t)

	for _, program := range []string{
		"",
		"; comment only\n\n",
		"define x 1\nlabel:",
	} {
		asm := &Assembler{}
		prog, err := asm.Assemble(strings.NewReader(program))
		assert.Nil(prog)
		assert.ErrorIs(err, ErrNothingToAssemble)
	}
}

// Both passes must agree on the address of every line.
func TestAssemblePasses(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		"  JSR init",
		"  JMP loop",
		"init:",
		"  LDA #<table",
		"  STA $00",
		"  LDA #>table",
		"  STA $01",
		"  RTS",
		"loop:",
		"  LDY #0",
		"  LDA (0),Y",
		"  BEQ loop",
		"  LDA table,X",
		"  JMP (vector)",
		"vector:",
		"  DCB $00,$06",
		"table:",
		"  DCB 1,2,3",
	}
	prog := assemble(t, source...)

	pc := ADDR_START
	for _, line := range prog.Lines {
		if !strings.HasSuffix(line.Text, ":") {
			assert.Equal(pc, line.Address, line.Text)
		}
		pc += uint16(len(line.Bytes))
	}
	assert.Equal(pc, prog.End)
	assert.Equal(prog.Labels["table"], prog.End-3)
}

// Disassembling an assembled program and reassembling the listing yields
// the same image.
func TestAssembleRoundTrip(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"start:",
		"  LDA #$01",
		"  ADC $10",
		"  SBC $10,X",
		"  LDX $10,Y",
		"  AND $1234",
		"  ORA $1234,X",
		"  EOR $1234,Y",
		"  JMP ($1234)",
		"  CMP ($10,X)",
		"  STA ($10),Y",
		"  ROR A",
		"  TAX",
		"  BNE start",
		"  BRK",
	)

	mem := &memory.Memory{}
	prog.Load(mem)

	var listing []string
	for ins := range Disassemble(mem, ADDR_START, prog.Size) {
		listing = append(listing, fmt.Sprintf("%s %s", ins.Mnemonic, ins.Operand))
	}

	again := assemble(t, listing...)
	assert.Equal(prog.Binary(), again.Binary())
}
