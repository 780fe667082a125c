package utils

import "strings"

const StateCodeLength = 2

// IsStateCode reports whether s looks like a two letter US state code.
func IsStateCode(s string) bool {
	if len(s) != StateCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20 // lower
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// IsZipcode accepts both "12345" and "12345-6789".
func IsZipcode(s string) bool {
	base, ext, found := strings.Cut(s, "-")
	if len(base) != 5 || !IsOnlyNumbers(base) {
		return false
	}
	if !found {
		return true
	}
	return len(ext) == 4 && IsOnlyNumbers(ext)
}

func IsOnlyNumbers(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SplitContactName splits "Jane Q Doe" into "Jane" and "Q Doe".
func SplitContactName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
