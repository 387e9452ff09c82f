package validate

import (
	"fmt"
	"strings"
)

// NonBlank verifies that arg contains at least one non-whitespace character.
// The name is used in the error message to identify the offending argument.
func NonBlank(arg, name string) error {
	if strings.TrimSpace(arg) == "" {
		return fmt.Errorf("%s must not be blank: %q", name, arg)
	}
	return nil
}

// ExactLength verifies that arg is exactly length characters long.
func ExactLength(arg string, length int, name string) error {
	if len(arg) != length {
		return fmt.Errorf("string length violation (%s): got %d, want %d", name, len(arg), length)
	}
	return nil
}

// HexID verifies that arg is a lowercase hexadecimal identifier of exactly
// width characters. This is the id format used throughout the pci.ids file:
// four characters for vendors, devices and subsystems, two characters for the
// device class taxonomy.
func HexID(arg string, width int, name string) error {
	if err := ExactLength(arg, width, name); err != nil {
		return err
	}
	for _, r := range arg {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("%s must be lowercase hexadecimal: %q", name, arg)
		}
	}
	return nil
}
