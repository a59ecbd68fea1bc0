package domain

import (
	"fmt"
	"strings"
)

// ValidateScenarioName rejects names that are empty, contain path
// separators, or are relative directory references.
func ValidateScenarioName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidScenarioName)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidScenarioName, name)
	}
	return nil
}
