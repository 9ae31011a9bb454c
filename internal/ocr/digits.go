package ocr

import (
	"strconv"
	"strings"
)

// Odometer displays carry 4-7 digits; longer runs mean the recognizer
// picked up surrounding text, in which case the trailing digits are the
// reading.
const (
	minOdometerDigits = 4
	maxOdometerDigits = 7
)

// Reading is the outcome of running the digit heuristic over raw OCR
// text. Value is nil when no usable digits were found; that is a
// successful empty result, not an error.
type Reading struct {
	Value      *int64
	RawText    string
	DigitsOnly string
}

// ExtractReading applies the odometer heuristic to raw recognizer
// output: strip everything that is not a digit, then take the run as-is
// when it is 4-7 digits long, the last 7 digits when longer, and
// whatever is left when shorter but non-empty.
func ExtractReading(rawText string) Reading {
	var b strings.Builder
	for _, r := range rawText {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digitsOnly := b.String()

	reading := Reading{RawText: rawText, DigitsOnly: digitsOnly}

	var candidate string
	switch n := len(digitsOnly); {
	case n >= minOdometerDigits && n <= maxOdometerDigits:
		candidate = digitsOnly
	case n > maxOdometerDigits:
		candidate = digitsOnly[n-maxOdometerDigits:]
	case n > 0:
		candidate = digitsOnly
	}

	if candidate == "" {
		return reading
	}

	value, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil {
		return reading
	}
	reading.Value = &value
	return reading
}
