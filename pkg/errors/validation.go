package errors

import (
	"strings"
	"unicode"
)

// lcscCodeMax is a sanity bound; real LCSC codes are "C" plus up to 8 digits.
const lcscCodeMax = 16

// ValidatePartCode validates an LCSC-style part code ("C82899").
// It rejects inputs that could not possibly be a stock code before any
// database or network access happens.
func ValidatePartCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidCode, "part code cannot be empty")
	}

	if len(code) > lcscCodeMax {
		return New(ErrCodeInvalidCode, "part code too long (max %d characters)", lcscCodeMax)
	}

	for _, r := range code {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCode, "part code contains invalid characters")
		}
	}

	return nil
}

// ValidateComponentUUID validates an EasyEDA component UUID.
// EasyEDA UUIDs are 32 lowercase hexadecimal characters, not RFC 4122.
// Validation happens locally, before any network call, so a malformed UUID
// never consumes a request.
func ValidateComponentUUID(uuid string) error {
	if uuid == "" {
		return New(ErrCodeInvalidUUID, "component uuid cannot be empty")
	}

	if len(uuid) != 32 {
		return New(ErrCodeInvalidUUID, "component uuid must be 32 characters, got %d", len(uuid))
	}

	for _, r := range uuid {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return New(ErrCodeInvalidUUID, "component uuid must be lowercase hex: %q", uuid)
		}
	}

	return nil
}

// ValidateBatchSize validates a batch lookup size against the given maximum.
// Oversized batches fail before any query executes.
func ValidateBatchSize(n, max int) error {
	if n > max {
		return New(ErrCodeBatchTooLarge,
			"batch size %d exceeds maximum of %d; split into smaller batches", n, max)
	}
	return nil
}
