// Package validate contains the input checks applied to free-text
// conversation steps. Every function is pure: a rejected input is reported
// through an error value and never advances conversation state.
package validate

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNotInteger = errors.New("input is not a positive integer")
	ErrNotAmount  = errors.New("input is not a valid amount")
	ErrEmpty      = errors.New("input is empty")
)

// Integer accepts text composed only of decimal digits whose value is >= 1.
func Integer(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrNotInteger
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, ErrNotInteger
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 0, ErrNotInteger
	}
	return n, nil
}

// Amount accepts decimal digits with at most one decimal point, e.g. "2"
// or "0.5". Zero amounts are rejected. The value is kept as text;
// collaborators decide its precision.
func Amount(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNotAmount
	}
	dots := 0
	digits := 0
	nonZero := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
			if r != '0' {
				nonZero = true
			}
		case r == '.':
			dots++
			if dots > 1 {
				return "", ErrNotAmount
			}
		default:
			return "", ErrNotAmount
		}
	}
	if digits == 0 || !nonZero {
		return "", ErrNotAmount
	}
	return text, nil
}

// NonEmpty trims the text and rejects empty results.
func NonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
