package oled

// GlyphWidth is the number of columns in a glyph
const GlyphWidth = 8

// DigitMargin is the empty space on each side of a digit
const DigitMargin = 1

// DigitWidth is the width a digit takes on screen, margins included
const DigitWidth = DigitMargin + GlyphWidth + DigitMargin

// Glyph is an 8x8 bitmap stored as columns, bit 0 being the top row
type Glyph [GlyphWidth]uint8

// Seg returns column x
func (g Glyph) Seg(x int) uint8 {
	return g[x]
}

// glyphFromArt converts eight rows of ASCII art into columns.
// Any character other than a space is a lit pixel.
func glyphFromArt(rows [8]string) Glyph {
	var g Glyph
	for y, row := range rows {
		for x := 0; x < GlyphWidth && x < len(row); x++ {
			if row[x] != ' ' {
				g[x] |= 1 << y
			}
		}
	}
	return g
}

var (
	decDigits  [10]Glyph
	hexLetters [6]Glyph

	// GlyphX replaces a number too large to show
	GlyphX Glyph

	// GlyphMinus replaces a negative number
	GlyphMinus Glyph
)

func init() {
	decArt := [10][8]string{
		{"  ####  ", " ##  ## ", " ## ### ", " ###### ", " ### ## ", " ##  ## ", "  ####  ", "        "},
		{"   ##   ", "  ###   ", "   ##   ", "   ##   ", "   ##   ", "   ##   ", " ###### ", "        "},
		{"  ####  ", " ##  ## ", "     ## ", "   ###  ", "  ##    ", " ##     ", " ###### ", "        "},
		{"  ####  ", " ##  ## ", "     ## ", "   ###  ", "     ## ", " ##  ## ", "  ####  ", "        "},
		{"    ##  ", "   ###  ", "  # ##  ", " #  ##  ", " ###### ", "    ##  ", "    ##  ", "        "},
		{" ###### ", " ##     ", " #####  ", "     ## ", "     ## ", " ##  ## ", "  ####  ", "        "},
		{"  ####  ", " ##     ", " #####  ", " ##  ## ", " ##  ## ", " ##  ## ", "  ####  ", "        "},
		{" ###### ", "     ## ", "    ##  ", "   ##   ", "  ##    ", "  ##    ", "  ##    ", "        "},
		{"  ####  ", " ##  ## ", " ##  ## ", "  ####  ", " ##  ## ", " ##  ## ", "  ####  ", "        "},
		{"  ####  ", " ##  ## ", " ##  ## ", "  ##### ", "     ## ", "    ##  ", "  ###   ", "        "},
	}
	hexArt := [6][8]string{
		{"  ####  ", " ##  ## ", " ##  ## ", " ###### ", " ##  ## ", " ##  ## ", " ##  ## ", "        "},
		{" #####  ", " ##  ## ", " ##  ## ", " #####  ", " ##  ## ", " ##  ## ", " #####  ", "        "},
		{"  ####  ", " ##  ## ", " ##     ", " ##     ", " ##     ", " ##  ## ", "  ####  ", "        "},
		{" ####   ", " ## ##  ", " ##  ## ", " ##  ## ", " ##  ## ", " ## ##  ", " ####   ", "        "},
		{" ###### ", " ##     ", " ##     ", " #####  ", " ##     ", " ##     ", " ###### ", "        "},
		{" ###### ", " ##     ", " ##     ", " #####  ", " ##     ", " ##     ", " ##     ", "        "},
	}
	for i, art := range decArt {
		decDigits[i] = glyphFromArt(art)
	}
	for i, art := range hexArt {
		hexLetters[i] = glyphFromArt(art)
	}
	GlyphX = glyphFromArt([8]string{" ##  ## ", " ##  ## ", "  ####  ", "   ##   ", "  ####  ", " ##  ## ", " ##  ## ", "        "})
	GlyphMinus = glyphFromArt([8]string{"        ", "        ", "        ", " ###### ", "        ", "        ", "        ", "        "})
}

// DecDigit returns the glyph of decimal digit n (0 to 9)
func DecDigit(n uint8) Glyph {
	return decDigits[n%10]
}

// HexDigit returns the glyph of the low nibble of n
func HexDigit(n uint8) Glyph {
	n &= 0x0F
	if n < 10 {
		return decDigits[n]
	}
	return hexLetters[n-10]
}
