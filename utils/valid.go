package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// SanitizeInput trims input and drops control characters. Output escaping
// is left to the templates.
func SanitizeInput(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
}

// SanitizePhone keeps digits and a leading plus sign.
func SanitizePhone(phone string) (string, error) {
	phone = nonPhoneChars.ReplaceAllString(strings.TrimSpace(phone), "")
	if strings.LastIndex(phone, "+") > 0 {
		return "", errors.New("invalid phone number")
	}
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 6 || len(digits) > 15 {
		return "", errors.New("invalid phone number length")
	}
	return phone, nil
}

// SanitizeMap sanitizes all values in a map and drops blank ones.
func SanitizeMap(input map[string]string) map[string]string {
	sanitized := make(map[string]string, len(input))
	for k, v := range input {
		if v = SanitizeInput(v); v != "" {
			sanitized[strings.TrimSpace(k)] = v
		}
	}
	return sanitized
}
