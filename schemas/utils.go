package schemas

import "strings"

// Ptr creates a pointer to any value.
func Ptr[T any](v T) *T {
	return &v
}

// RedactedPlaceholder replaces secrets in any text that may leave the process.
const RedactedPlaceholder = "[REDACTED]"

// Redact removes every occurrence of secret from text.
func Redact(text, secret string) string {
	if secret == "" {
		return text
	}
	return strings.ReplaceAll(text, secret, RedactedPlaceholder)
}
