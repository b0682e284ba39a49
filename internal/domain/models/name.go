package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"drivehub/internal/domain"
)

// MaxNameLength caps folder and file display names.
const MaxNameLength = 255

// forbiddenNameChars are the characters rejected in folder and file names.
const forbiddenNameChars = `/\:*?"<>|`

// ValidateName checks a folder or file display name. Both entity kinds
// share the same rule: non-empty after trimming, no filesystem-reserved
// characters, at most MaxNameLength runes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrNameEmpty
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return domain.ErrNameInvalidChars
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", domain.ErrValidation, MaxNameLength)
	}
	return nil
}

// CheckName adapts ValidateName for use as an ozzo-validation rule
// (validation.By expects func(interface{}) error).
func CheckName(value interface{}) error {
	name, _ := value.(string)
	return ValidateName(name)
}
