package block

// utf8Decoder incrementally validates a UTF-8 byte sequence one byte at a
// time, so the block detector can stop a text run the instant an invalid
// byte is seen rather than decoding whole runes up front. This mirrors the
// role of UTF8Decoder in the original detector, re-expressed against real
// UTF-8 validity rules (no pack library exposes an incremental validator;
// see DESIGN.md).
type utf8Decoder struct {
	remaining int  // continuation bytes still expected
	loMin     byte // allowed low bound for the next continuation byte
	hiMax     byte // allowed high bound for the next continuation byte
	bad       bool
}

// update feeds the next byte to the decoder and reports whether the
// sequence is now invalid.
func (d *utf8Decoder) update(b byte) bool {
	if d.bad {
		return true
	}
	if d.remaining > 0 {
		if b < d.loMin || b > d.hiMax {
			d.bad = true
			return true
		}
		d.remaining--
		// Subsequent continuation bytes (if any) always span the full
		// continuation range.
		d.loMin, d.hiMax = 0x80, 0xBF
		return false
	}

	switch {
	case b < 0x80:
		// ASCII.
	case b >= 0xC2 && b <= 0xDF:
		d.remaining, d.loMin, d.hiMax = 1, 0x80, 0xBF
	case b == 0xE0:
		d.remaining, d.loMin, d.hiMax = 2, 0xA0, 0xBF
	case (b >= 0xE1 && b <= 0xEC) || b == 0xEE || b == 0xEF:
		d.remaining, d.loMin, d.hiMax = 2, 0x80, 0xBF
	case b == 0xED:
		d.remaining, d.loMin, d.hiMax = 2, 0x80, 0x9F
	case b == 0xF0:
		d.remaining, d.loMin, d.hiMax = 3, 0x90, 0xBF
	case b >= 0xF1 && b <= 0xF3:
		d.remaining, d.loMin, d.hiMax = 3, 0x80, 0xBF
	case b == 0xF4:
		d.remaining, d.loMin, d.hiMax = 3, 0x80, 0x8F
	default:
		d.bad = true
		return true
	}
	return false
}
