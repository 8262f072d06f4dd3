package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// ParseClock converts "HH:MM" (also "H:MM" and "HH:MM:SS") into minutes after
// midnight.
func ParseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
	}
	return hours*60 + minutes, nil
}

// ElapsedMinutes treats an end before the start as the next day.
func ElapsedMinutes(start, end int) int {
	if end < start {
		end += minutesPerDay
	}
	return end - start
}

// RoundUpMinutes rounds minutes up to the next multiple of step. A step of 0
// or 1 leaves the value as is.
func RoundUpMinutes(minutes, step int) int {
	if step <= 1 || minutes <= 0 {
		return minutes
	}
	if rem := minutes % step; rem != 0 {
		return minutes + step - rem
	}
	return minutes
}

// ShiftHours returns the hours between two clock readings after rounding.
func ShiftHours(start, end string, step int) (decimal.Decimal, error) {
	from, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	minutes := RoundUpMinutes(ElapsedMinutes(from, to), step)
	return decimal.NewFromInt(int64(minutes)).Div(sixty), nil
}
