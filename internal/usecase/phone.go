package usecase

import (
	"errors"
	"fmt"
	"strings"
)

type digitRule struct {
	min, max int
}

// phoneRules holds the national number length per dial code
var phoneRules = map[string]digitRule{
	"+1":   {min: 10, max: 10}, // US/Canada
	"+44":  {min: 10, max: 10}, // UK
	"+966": {min: 9, max: 9},   // Saudi Arabia
	"+971": {min: 9, max: 9},   // UAE
	"+965": {min: 8, max: 8},   // Kuwait
	"+974": {min: 8, max: 8},   // Qatar
	"+973": {min: 8, max: 8},   // Bahrain
	"+968": {min: 8, max: 8},   // Oman
}

var ErrInvalidCountryCode = errors.New("invalid country code")

// UnformatPhoneNumber strips everything but digits
func UnformatPhoneNumber(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FormatPhoneNumber groups the digits of value as "ddd ddd dddd dddd".
// Digits past the fourteenth are dropped.
func FormatPhoneNumber(value string) string {
	number := UnformatPhoneNumber(value)

	switch n := len(number); {
	case n <= 3:
		return number
	case n <= 6:
		return number[:3] + " " + number[3:]
	case n <= 10:
		return number[:3] + " " + number[3:6] + " " + number[6:]
	default:
		end := min(n, 14)
		return number[:3] + " " + number[3:6] + " " + number[6:10] + " " + number[10:end]
	}
}

// ValidatePhoneNumber checks the digit count of a number for a dial code.
// The number may carry the dial code itself, as the employee form sends it.
func ValidatePhoneNumber(phoneNumber, dialCode string) error {
	rule, ok := phoneRules[dialCode]
	if !ok {
		return ErrInvalidCountryCode
	}

	number := nationalNumber(phoneNumber, dialCode)

	if len(number) < rule.min {
		return fmt.Errorf("phone number must be at least %d digits", rule.min)
	}
	if len(number) > rule.max {
		return fmt.Errorf("phone number cannot exceed %d digits", rule.max)
	}
	return nil
}

func nationalNumber(phoneNumber, dialCode string) string {
	trimmed := strings.TrimSpace(phoneNumber)
	if strings.HasPrefix(trimmed, "+") {
		digits := UnformatPhoneNumber(trimmed)
		return strings.TrimPrefix(digits, UnformatPhoneNumber(dialCode))
	}
	return UnformatPhoneNumber(trimmed)
}
