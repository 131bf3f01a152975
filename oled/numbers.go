package oled

// errGlyphs is how many glyphs fill the width of four digits
const errGlyphs = 4 * DigitWidth / GlyphWidth

// SendGlyph draws g vertically centred in the quarter, with margin empty
// columns on each side
func (q *QuarterChat) SendGlyph(g Glyph, margin uint16) *QuarterChat {
	q.SendSpacing(margin)
	for _, seg := range g {
		q.SendColumn(seg<<4, seg>>4)
	}
	return q.SendSpacing(margin)
}

// Send2Hex draws n as two hex digits
func (q *QuarterChat) Send2Hex(n uint8) *QuarterChat {
	return q.SendGlyph(HexDigit(n>>4), DigitMargin).SendGlyph(HexDigit(n), DigitMargin)
}

// Send4Hex draws n as four hex digits
func (q *QuarterChat) Send4Hex(n uint16) *QuarterChat {
	return q.Send2Hex(uint8(n >> 8)).Send2Hex(uint8(n))
}

// Send3Dec draws n as three decimal digits with leading zeros
func (q *QuarterChat) Send3Dec(n uint8) *QuarterChat {
	return q.SendGlyph(DecDigit(n/100), DigitMargin).
		SendGlyph(DecDigit(n/10%10), DigitMargin).
		SendGlyph(DecDigit(n%10), DigitMargin)
}

// Send4Dec draws n as four decimal digits with leading zeros. Negative
// numbers show as a row of minus signs and numbers above 9999 as a row of
// crosses, both as wide as four digits.
func (q *QuarterChat) Send4Dec(n int) *QuarterChat {
	switch {
	case n < 0:
		return q.sendRow(GlyphMinus)
	case n > 9999:
		return q.sendRow(GlyphX)
	}
	for div := 1000; div > 0; div /= 10 {
		q.SendGlyph(DecDigit(uint8(n/div%10)), DigitMargin)
	}
	return q
}

func (q *QuarterChat) sendRow(g Glyph) *QuarterChat {
	for i := 0; i < errGlyphs; i++ {
		q.SendGlyph(g, 0)
	}
	return q
}
