package normalization

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice extracts the integer amount from a display price such as
// "12,000원" or "₩ 3,500". Every rune that is not an ASCII digit is dropped;
// an input with no digits yields 0. Digit strings too large for int64
// saturate at math.MaxInt64.
func ParsePrice(display string) int64 {
	var b strings.Builder
	b.Grow(len(display))
	for _, r := range display {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// FormatPrice renders an integer amount with thousands separators and the
// won suffix, e.g. 15000 -> "15,000원".
func FormatPrice(amount int64) string {
	neg := amount < 0
	mag := uint64(amount)
	if neg {
		// Two's complement negation also covers math.MinInt64.
		mag = -mag
	}
	raw := strconv.FormatUint(mag, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(raw) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(raw[:lead])
	for i := lead; i < len(raw); i += 3 {
		b.WriteByte(',')
		b.WriteString(raw[i : i+3])
	}
	b.WriteString("원")
	return b.String()
}
