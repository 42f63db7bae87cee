// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"

	"github.com/ezrec/sim6502/cpu"
	"github.com/ezrec/sim6502/emulator"
)

var (
	colorAddress  = color.New(color.FgCyan).SprintFunc()
	colorMnemonic = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorHalt     = color.New(color.FgRed).SprintFunc()
)

// listing prints the disassembly of the loaded program.
func listing(emu *emulator.Emulator) {
	for ins := range emu.Disassembly() {
		hex := make([]string, len(ins.Bytes))
		for n, value := range ins.Bytes {
			hex[n] = fmt.Sprintf("%02x", value)
		}
		fmt.Printf("%s    %-10s%s %s\n",
			colorAddress(fmt.Sprintf("$%04x", ins.Address)),
			strings.Join(hex, " "),
			colorMnemonic(ins.Mnemonic),
			ins.Operand)
	}
}

// trace single steps the emulator, printing each instruction and the
// registers after it.
func trace(ctx context.Context, emu *emulator.Emulator, limit int) (err error) {
	for limit == 0 || emu.Cpu.Ticks < limit {
		err = ctx.Err()
		if err != nil {
			return
		}
		ins := cpu.DecodeAt(emu.Cpu.Memory, emu.Cpu.PC)
		var done bool
		done, err = emu.Step()
		fmt.Printf("%s  %-4s%-10s ; %s\n",
			colorAddress(fmt.Sprintf("$%04x", ins.Address)),
			colorMnemonic(ins.Mnemonic),
			ins.Operand,
			strings.ReplaceAll(emu.Cpu.String(), "\n", " "))
		if done || err != nil {
			return
		}
	}

	return
}

// run executes the emulator in batches until a halt or the limit.
func run(ctx context.Context, emu *emulator.Emulator, limit int) (err error) {
	if limit == 0 {
		return emu.Run(ctx)
	}

	for done := false; !done && emu.Cpu.Ticks < limit; {
		err = ctx.Err()
		if err != nil {
			return
		}
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

func main() {
	var compile string
	var hexdump bool
	var disassemble bool
	var execute bool
	var tracing bool
	var seed uint64
	var limit int
	var screen bool
	var keys string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.BoolVar(&hexdump, "x", false, "Hexdump the assembled program")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the assembled program")
	flag.BoolVar(&execute, "r", false, "Run the program until it halts")
	flag.BoolVar(&tracing, "t", false, "Trace the program, one instruction at a time")
	flag.Uint64Var(&seed, "seed", 0, "Random byte seed (0 for a random seed)")
	flag.IntVar(&limit, "max", 0, "Maximum instructions to execute (0 for no limit)")
	flag.BoolVar(&screen, "screen", false, "Render the display after running")
	flag.StringVar(&keys, "k", "", "Keyboard input file")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		log.Fatalf("%v: -c is required", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	if seed != 0 {
		emu.Seed(seed)
	}

	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	prog, err := emu.Assemble(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	if verbose {
		log.Printf("%v: %d bytes, %d labels", compile, prog.Size, len(prog.Labels))
	}

	if hexdump {
		text, err := emu.Hexdump()
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		fmt.Println(text)
	}

	if disassemble {
		listing(emu)
	}

	if len(keys) != 0 {
		kf, err := os.Open(keys)
		if err != nil {
			log.Fatalf("%v: %v", keys, err)
		}
		defer kf.Close()
		emu.Keyboard.Input = kf
	}

	if execute || tracing {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if tracing {
			err = trace(ctx, emu, limit)
		} else {
			err = run(ctx, emu, limit)
		}
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		fmt.Printf("%s after %d instructions\n", colorHalt(emu.Halt()), emu.Cpu.Ticks)
		fmt.Println(emu.Cpu.String())
	}

	if screen {
		err = emu.Display.Render(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
	}
}
