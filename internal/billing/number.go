package billing

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	fallbackDispatcherToken = "XX"
	multipleUnitsToken      = "MUL"
	numberDateLayout        = "060102"
)

type NumberInput struct {
	DispatcherName string
	UnitNames      []string
	FirstDate      time.Time
	LastDate       time.Time
}

// InvoiceNumber builds the default number
// INV-{initials}-{unit}-{yyMMdd}-{yyMMdd}.
func InvoiceNumber(in NumberInput) string {
	return fmt.Sprintf("INV-%s-%s-%s-%s",
		DispatcherInitials(in.DispatcherName),
		UnitToken(in.UnitNames),
		in.FirstDate.Format(numberDateLayout),
		in.LastDate.Format(numberDateLayout),
	)
}

// DispatcherInitials upper-cases the first letter of every word.
func DispatcherInitials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		first := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(first))
	}
	if b.Len() == 0 {
		return fallbackDispatcherToken
	}
	return b.String()
}

// UnitToken is the first digit run of the only unit in the batch, or MUL.
// Blank names are ignored and duplicates count once.
func UnitToken(unitNames []string) string {
	distinct := make(map[string]struct{}, len(unitNames))
	var only string
	for _, name := range unitNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := distinct[name]; !seen {
			distinct[name] = struct{}{}
			only = name
		}
	}
	if len(distinct) != 1 {
		return multipleUnitsToken
	}
	if digits := firstDigitRun(only); digits != "" {
		return digits
	}
	return multipleUnitsToken
}

func firstDigitRun(value string) string {
	start := -1
	for i, r := range value {
		isDigit := r >= '0' && r <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return value[start:i]
		}
	}
	if start >= 0 {
		return value[start:]
	}
	return ""
}

// DateSpan returns the earliest and latest of the given dates.
func DateSpan(dates []time.Time) (time.Time, time.Time) {
	var first, last time.Time
	for i, d := range dates {
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last
}
