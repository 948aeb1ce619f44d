// Package swimtime converts between displayed swim times and numeric seconds.
//
// Historical results print times in one of three fixed-width forms:
// "SS.ss" for sub-minute swims, "M:SS.ss" for single-digit minutes and
// "MM:SS.ss" for double-digit minutes. The codec is pure and bidirectional;
// any other width is a format error.
package swimtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Display string widths accepted by Parse.
const (
	widthSeconds       = 5 // SS.ss
	widthShortMinutes  = 7 // M:SS.ss
	widthDoubleMinutes = 8 // MM:SS.ss
)

// MalformedTimeError reports a display string that does not match any of the
// supported widths, or whose digits do not parse.
type MalformedTimeError struct {
	Display string
	Reason  string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed swim time %q: %s", e.Display, e.Reason)
}

// StripLeadingColon removes the leading colon artifact some result PDFs
// produce when the minute digit is dropped (":SS.ss" -> "SS.ss").
// Callers apply this before Parse; the codec itself never masks it.
func StripLeadingColon(display string) string {
	return strings.TrimPrefix(display, ":")
}

// Parse converts a display string into seconds.
func Parse(display string) (float64, error) {
	switch len(display) {
	case widthSeconds:
		if display[2] != '.' {
			return 0, &MalformedTimeError{Display: display, Reason: "misplaced separators"}
		}

		if !allDigits(display[:2]) || !allDigits(display[3:]) {
			return 0, &MalformedTimeError{Display: display, Reason: "invalid seconds"}
		}

		secs, err := strconv.ParseFloat(display, 64)
		if err != nil {
			return 0, &MalformedTimeError{Display: display, Reason: "invalid seconds"}
		}

		return secs, nil

	case widthShortMinutes:
		return parseWithMinutes(display, 1)

	case widthDoubleMinutes:
		return parseWithMinutes(display, 2)

	default:
		return 0, &MalformedTimeError{
			Display: display,
			Reason:  fmt.Sprintf("unexpected width %d", len(display)),
		}
	}
}

// parseWithMinutes handles the M:SS.ss and MM:SS.ss widths, where minDigits
// is the number of minute digits before the colon.
func parseWithMinutes(display string, minDigits int) (float64, error) {
	if display[minDigits] != ':' || display[minDigits+3] != '.' {
		return 0, &MalformedTimeError{Display: display, Reason: "misplaced separators"}
	}

	if !allDigits(display[:minDigits]) {
		return 0, &MalformedTimeError{Display: display, Reason: "invalid minutes"}
	}

	if !allDigits(display[minDigits+1 : minDigits+3]) {
		return 0, &MalformedTimeError{Display: display, Reason: "invalid seconds"}
	}

	if !allDigits(display[minDigits+4:]) {
		return 0, &MalformedTimeError{Display: display, Reason: "invalid hundredths"}
	}

	minutes, _ := strconv.ParseFloat(display[:minDigits], 64)
	seconds, _ := strconv.ParseFloat(display[minDigits+1:minDigits+3], 64)
	hundredths, _ := strconv.ParseFloat(display[minDigits+4:], 64)

	return minutes*60 + seconds + hundredths/100, nil
}

// allDigits reports whether s is non-empty and every byte is an ASCII
// digit. Display-time fields carry no signs or stray separators.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return len(s) > 0
}

// Format renders seconds back into the narrowest supported display width.
// It is the inverse of Parse for all three width classes.
func Format(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%05.2f", seconds)
	}

	minutes := int(seconds) / 60
	rem := seconds - float64(minutes)*60

	// Guard against "1:60.00" when the remainder rounds up to a minute.
	if math.Round(rem*100) >= 6000 {
		minutes++
		rem = 0
	}

	if minutes < 10 {
		return fmt.Sprintf("%d:%05.2f", minutes, rem)
	}

	return fmt.Sprintf("%02d:%05.2f", minutes, rem)
}
