package io

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/fatih/color"

	"github.com/ezrec/sim6502/memory"
)

const (
	DISPLAY_BASE   = uint16(0x0200) // First pixel.
	DISPLAY_END    = uint16(0x05ff) // Last pixel.
	DISPLAY_WIDTH  = 32
	DISPLAY_HEIGHT = 32
)

// Palette is the 16 color display palette, as HTML colors.
var Palette = [16]string{
	"#000000", "#ffffff", "#880000", "#aaffee",
	"#cc44cc", "#00cc55", "#0000aa", "#eeee77",
	"#dd8855", "#664400", "#ff7777", "#333333",
	"#777777", "#aaff66", "#0088ff", "#bbbbbb",
}

// terminal approximates the palette with ANSI backgrounds.
var terminal = [16]*color.Color{
	color.New(color.BgBlack),     // black
	color.New(color.BgHiWhite),   // white
	color.New(color.BgRed),       // red
	color.New(color.BgHiCyan),    // cyan
	color.New(color.BgMagenta),   // purple
	color.New(color.BgGreen),     // green
	color.New(color.BgBlue),      // blue
	color.New(color.BgHiYellow),  // yellow
	color.New(color.BgYellow),    // orange
	color.New(color.BgRed),       // brown
	color.New(color.BgHiRed),     // light red
	color.New(color.BgHiBlack),   // dark grey
	color.New(color.BgWhite),     // grey
	color.New(color.BgHiGreen),   // light green
	color.New(color.BgHiBlue),    // light blue
	color.New(color.BgHiWhite),   // light grey
}

// Display is the 32x32 pixel screen mapped at DISPLAY_BASE. Each byte
// selects a palette entry with its low nibble.
type Display struct {
	pixels [DISPLAY_WIDTH * DISPLAY_HEIGHT]byte
	dirty  bool
}

// Attach observes writes to the display window.
func (d *Display) Attach(mem *memory.Memory) {
	mem.Watch(DISPLAY_BASE, DISPLAY_END, d.update)
}

// Defines returns the address of the screen.
func (d *Display) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"sysScreen": fmt.Sprintf("$%04x", DISPLAY_BASE),
	})
}

// Reset blanks the screen.
func (d *Display) Reset() {
	clear(d.pixels[:])
	d.dirty = true
}

func (d *Display) update(addr uint16, value byte) {
	d.pixels[addr-DISPLAY_BASE] = value & 0x0f
	d.dirty = true
}

// Pixel returns the palette index at a position, or 0 off screen.
func (d *Display) Pixel(x, y int) byte {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return 0
	}
	return d.pixels[y*DISPLAY_WIDTH+x]
}

// Color returns the HTML color at a position.
func (d *Display) Color(x, y int) string {
	return Palette[d.Pixel(x, y)]
}

// Dirty returns true if the screen changed since the last call.
func (d *Display) Dirty() (dirty bool) {
	dirty = d.dirty
	d.dirty = false
	return
}

// Render draws the screen, two columns per pixel. Without color support
// each pixel is drawn as its hex palette index, with '.' for black.
func (d *Display) Render(w io.Writer) (err error) {
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			p := d.Pixel(x, y)
			if color.NoColor {
				cell := "."
				if p != 0 {
					cell = fmt.Sprintf("%x", p)
				}
				_, err = fmt.Fprint(w, cell+cell)
			} else {
				_, err = terminal[p].Fprint(w, "  ")
			}
			if err != nil {
				return
			}
		}
		_, err = fmt.Fprintln(w)
		if err != nil {
			return
		}
	}

	return
}
