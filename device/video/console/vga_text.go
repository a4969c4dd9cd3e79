// Package console implements the text-mode console used for kernel output.
package console

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"unsafe"
)

const (
	// DefaultColumns and DefaultRows describe the standard 80x25 text mode.
	DefaultColumns = 80
	DefaultRows    = 25

	// FramebufferPhysAddr is the physical address of the VGA text-mode
	// framebuffer.
	FramebufferPhysAddr = uintptr(0xB8000)

	// tabWidth is the number of columns a tab advances the cursor by.
	tabWidth = 4

	// defaultAttr renders light gray text on a black background.
	defaultAttr = uint8(7)
)

// VgaTextConsole implements an EGA-compatible text console using VGA
// mode 0x3.
//
// Each character in the console framebuffer is represented using two bytes,
// a byte for the character ASCII code and a byte that encodes the foreground
// and background colors (4 bits for each).
//
// Output follows teletype rules: a tab advances the cursor by four columns,
// a line feed moves to the start of the next row, a carriage return moves
// to the start of the current row and any other byte is drawn at the cursor
// which then advances, wrapping to the next row. When the cursor moves past
// the last row the screen scrolls up by one line.
type VgaTextConsole struct {
	width  uint32
	height uint32

	fb []uint16

	// x and y hold the 0-based cursor position. y may equal height after
	// a wrap; the scroll is deferred until the next byte is written.
	x, y uint32

	attr uint8
}

// NewVgaTextConsole creates a console of the given dimensions drawing into
// fb, which must hold at least columns*rows cells.
func NewVgaTextConsole(columns, rows uint32, fb []uint16) *VgaTextConsole {
	if uint64(len(fb)) < uint64(columns)*uint64(rows) {
		panic(fmt.Sprintf("console: framebuffer holds %d cells; need %d", len(fb), columns*rows))
	}

	return &VgaTextConsole{
		width:  columns,
		height: rows,
		fb:     fb,
		attr:   defaultAttr,
	}
}

// MapFramebuffer returns a slice over the text-mode framebuffer at physAddr.
// It must only be used while physAddr is identity-mapped.
func MapFramebuffer(physAddr uintptr, columns, rows uint32) []uint16 {
	cells := int(columns * rows)
	return *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  cells,
		Cap:  cells,
		Data: physAddr,
	}))
}

// Dimensions returns the console width and height in characters.
func (cons *VgaTextConsole) Dimensions() (uint32, uint32) {
	return cons.width, cons.height
}

// Cursor returns the 0-based cursor position.
func (cons *VgaTextConsole) Cursor() (x, y uint32) {
	return cons.x, cons.y
}

// SetColors changes the colors used for subsequent output.
func (cons *VgaTextConsole) SetColors(fg, bg uint8) {
	cons.attr = (bg&0xf)<<4 | fg&0xf
}

// Putc writes a single byte to the console.
func (cons *VgaTextConsole) Putc(ch byte) {
	if cons.y >= cons.height {
		cons.scrollUp()
	}

	switch ch {
	case '\t':
		cons.x += tabWidth
		if cons.x >= cons.width {
			cons.y += cons.x / cons.width
			cons.x %= cons.width
			if cons.y >= cons.height {
				cons.scrollUp()
			}
		}
	case '\n':
		cons.x = 0
		cons.y++
		if cons.y >= cons.height {
			cons.scrollUp()
		}
	case '\r':
		cons.x = 0
	default:
		cons.fb[cons.y*cons.width+cons.x] = cons.cell(ch)
		cons.x++
		cons.y += cons.x / cons.width
		cons.x %= cons.width
	}
}

// Write implements io.Writer. It never fails.
func (cons *VgaTextConsole) Write(p []byte) (int, error) {
	for _, b := range p {
		cons.Putc(b)
	}
	return len(p), nil
}

// Clear blanks the screen and moves the cursor to the top-left corner.
func (cons *VgaTextConsole) Clear() {
	blank := cons.cell(' ')
	for i := range cons.fb[:cons.width*cons.height] {
		cons.fb[i] = blank
	}
	cons.x, cons.y = 0, 0
}

// scrollUp moves every row up by one, blanks the last row and parks the
// cursor on it.
func (cons *VgaTextConsole) scrollUp() {
	rowCells := cons.width
	copy(cons.fb, cons.fb[rowCells:cons.height*rowCells])

	blank := cons.cell(' ')
	last := cons.fb[(cons.height-1)*rowCells : cons.height*rowCells]
	for i := range last {
		last[i] = blank
	}

	cons.y = cons.height - 1
}

func (cons *VgaTextConsole) cell(ch byte) uint16 {
	return uint16(cons.attr)<<8 | uint16(ch)
}

// Text returns the characters currently on screen, one line per row with
// trailing blanks removed.
func (cons *VgaTextConsole) Text() string {
	var sb strings.Builder
	for row := uint32(0); row < cons.height; row++ {
		line := make([]byte, cons.width)
		for col := uint32(0); col < cons.width; col++ {
			ch := byte(cons.fb[row*cons.width+col])
			if ch == 0 {
				ch = ' '
			}
			line[col] = ch
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit clears the screen.
func (cons *VgaTextConsole) DriverInit(w io.Writer) error {
	cons.Clear()
	fmt.Fprintf(w, "text console %dx%d\n", cons.width, cons.height)
	return nil
}
