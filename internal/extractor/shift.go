package extractor

import "strings"

// The payment summary PDFs carry a text layer obfuscated by a constant
// character-code shift: every code point in [19, 94] maps to code+29 to
// recover the real character. The range starts at 19 (not printable ASCII)
// because digits are encoded as 0x13..0x1C. Code points outside the range
// pass through unchanged.
//
// The map is deliberately not an involution: applying the forward shift to
// already-decoded text does not round-trip.
const (
	ShiftOffset = 29
	ShiftLow    = 19
	ShiftHigh   = 94
)

// DecodeShift applies a constant character-code shift to every rune whose
// code point falls within [low, high]. Pure and stateless.
func DecodeShift(text string, shift, low, high int) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if int(r) >= low && int(r) <= high {
			b.WriteRune(r + rune(shift))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decode applies the payment-summary text layer decode with the empirically
// determined constants.
func Decode(text string) string {
	return DecodeShift(text, ShiftOffset, ShiftLow, ShiftHigh)
}
