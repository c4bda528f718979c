package common

import "strings"

// NormalizeIdentifier trims surrounding whitespace and lower-cases s. Usernames
// and emails are compared in this form everywhere on the client.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for passwords read from the terminal once they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
