package usisim

import (
	"strings"
	"sync"
)

// SSD1306 geometry
const (
	DisplayWidth  = 128
	DisplayHeight = 64
	DisplayPages  = DisplayHeight / 8
)

// Addressing modes selected with command 0x20
const (
	HorizontalAddressing = 0
	VerticalAddressing   = 1
	PageAddressing       = 2
)

// argCounts lists the commands that take argument bytes
var argCounts = map[uint8]int{
	0x20: 1, // Memory addressing mode
	0x21: 2, // Column address window
	0x22: 2, // Page address window
	0x81: 1, // Contrast
	0x8D: 1, // Charge pump
	0xA3: 2, // Vertical scroll area
	0xA8: 1, // Multiplex ratio
	0xD3: 1, // Display offset
	0xD5: 1, // Clock divide
	0xD9: 1, // Pre-charge period
	0xDA: 1, // COM pins
	0xDB: 1, // VCOMH deselect level
	0x26: 6, // Horizontal scroll setup
	0x27: 6,
	0x29: 5, // Vertical and horizontal scroll setup
	0x2A: 5,
}

// SSD1306 models the write side of an SSD1306 OLED controller on the
// two-wire bus: the control byte protocol, the command set used to drive it,
// and its 128x64 display RAM.
type SSD1306 struct {
	mu sync.Mutex

	ram [DisplayPages][DisplayWidth]uint8

	on         bool
	chargePump bool
	inverted   bool
	contrast   uint8
	mode       uint8

	colStart, colEnd   uint8
	pageStart, pageEnd uint8
	col, page          uint8
	pageModeCol        uint8 // Column start in page addressing

	// Control byte parser
	expectControl bool
	continuation  bool // Co bit: one byte follows, then another control byte
	data          bool // D/C# bit
	cmd           uint8
	args          []uint8
	argsLeft      int

	unknown int // Commands the model does not implement
}

// NewSSD1306 returns a controller in its reset state
func NewSSD1306() *SSD1306 {
	d := &SSD1306{}
	d.Reset()
	return d
}

// Reset restores the power-on state and clears the display RAM
func (d *SSD1306) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ram = [DisplayPages][DisplayWidth]uint8{}
	d.on, d.chargePump, d.inverted = false, false, false
	d.contrast = 0x7F
	d.mode = PageAddressing
	d.colStart, d.colEnd = 0, DisplayWidth-1
	d.pageStart, d.pageEnd = 0, DisplayPages-1
	d.col, d.page, d.pageModeCol = 0, 0, 0
	d.expectControl = true
	d.argsLeft = 0
	d.unknown = 0
}

// Begin starts a conversation. A command still waiting for arguments keeps
// waiting: drivers that send every byte in its own conversation rely on it.
func (d *SSD1306) Begin(read bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expectControl = true
	return true
}

// Read returns the status byte: bit 6 set while the display is off
func (d *SSD1306) Read() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.on {
		return 0x00
	}
	return 0x40
}

func (d *SSD1306) End() {}

func (d *SSD1306) Write(b byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expectControl {
		d.continuation = b&0x80 != 0
		d.data = b&0x40 != 0
		d.expectControl = false
		return true
	}

	if d.data {
		d.writeRAM(b)
	} else {
		d.command(b)
	}
	if d.continuation {
		d.expectControl = true
	}
	return true
}

func (d *SSD1306) command(b uint8) {
	if d.argsLeft > 0 {
		d.args = append(d.args, b)
		d.argsLeft--
		if d.argsLeft == 0 {
			d.apply(d.cmd, d.args)
		}
		return
	}

	if n, ok := argCounts[b]; ok {
		d.cmd = b
		d.args = d.args[:0]
		d.argsLeft = n
		return
	}

	switch {
	case b == 0xAE || b == 0xAF:
		d.on = b&1 != 0
	case b == 0xA6 || b == 0xA7:
		d.inverted = b&1 != 0
	case b >= 0xB0 && b <= 0xB7:
		d.page = b & 0x07
	case b <= 0x0F:
		d.pageModeCol = d.pageModeCol&0xF0 | b
		d.col = d.pageModeCol
	case b >= 0x10 && b <= 0x1F:
		d.pageModeCol = (b&0x0F)<<4 | d.pageModeCol&0x0F
		d.col = d.pageModeCol
	case b >= 0x40 && b <= 0x7F:
		// Display start line: no effect on RAM
	case b == 0xA0 || b == 0xA1 || b == 0xC0 || b == 0xC8 || b == 0xA4 || b == 0xA5 ||
		b == 0x2E || b == 0x2F || b == 0xE3:
		// Remap, scan direction, scrolling, NOP: no effect on RAM
	default:
		d.unknown++
	}
}

func (d *SSD1306) apply(cmd uint8, args []uint8) {
	switch cmd {
	case 0x20:
		if args[0]&0x03 != 0x03 {
			d.mode = args[0] & 0x03
		}
	case 0x21:
		d.colStart, d.colEnd = args[0]&0x7F, args[1]&0x7F
		d.col = d.colStart
	case 0x22:
		d.pageStart, d.pageEnd = args[0]&0x07, args[1]&0x07
		d.page = d.pageStart
	case 0x81:
		d.contrast = args[0]
	case 0x8D:
		d.chargePump = args[0]&0x04 != 0
	}
}

func (d *SSD1306) writeRAM(b uint8) {
	d.ram[d.page][d.col] = b

	switch d.mode {
	case HorizontalAddressing:
		if d.col < d.colEnd {
			d.col++
			return
		}
		d.col = d.colStart
		if d.page < d.pageEnd {
			d.page++
		} else {
			d.page = d.pageStart
		}
	case VerticalAddressing:
		if d.page < d.pageEnd {
			d.page++
			return
		}
		d.page = d.pageStart
		if d.col < d.colEnd {
			d.col++
		} else {
			d.col = d.colStart
		}
	default:
		if d.col < DisplayWidth-1 {
			d.col++
		} else {
			d.col = d.pageModeCol
		}
	}
}

// On reports whether the display is switched on
func (d *SSD1306) On() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// ChargePump reports whether the charge pump is enabled
func (d *SSD1306) ChargePump() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chargePump
}

// Contrast returns the contrast setting
func (d *SSD1306) Contrast() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.contrast
}

// Mode returns the addressing mode
func (d *SSD1306) Mode() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Cursor returns the RAM write position
func (d *SSD1306) Cursor() (col, page uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.col, d.page
}

// Unknown returns how many unimplemented commands were received
func (d *SSD1306) Unknown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unknown
}

// Segment returns the RAM byte at column x of page
func (d *SSD1306) Segment(x, page int) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ram[page][x]
}

// Snapshot copies the display RAM
func (d *SSD1306) Snapshot() [DisplayPages][DisplayWidth]uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ram
}

// Pixel reports whether the pixel at (x, y) is lit, honouring inversion
func (d *SSD1306) Pixel(x, y int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	lit := d.ram[y/8][x]>>(uint(y)%8)&1 != 0
	return lit != d.inverted
}

// Render draws the display as text, one line per pixel row
func (d *SSD1306) Render(on, off rune) string {
	var sb strings.Builder
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if d.Pixel(x, y) {
				sb.WriteRune(on)
			} else {
				sb.WriteRune(off)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
