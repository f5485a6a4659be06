package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxDisplayNameLength = 80

// ValidateDisplayName checks a profile display name. An empty name is valid;
// readers fall back to an anonymous label.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) > maxDisplayNameLength {
		return fmt.Errorf("display name must not exceed %d characters", maxDisplayNameLength)
	}
	if strings.ContainsAny(trimmed, "\x00\n\r") {
		return fmt.Errorf("display name contains invalid characters")
	}
	return nil
}
