package parser

import (
	"fmt"
	"strings"
)

// LineType identifies the kind of a single pci.ids line.
type LineType string

// Line types found in the pci.ids file.
const (
	// LineComment is a line starting with '#'. Comment lines accumulate
	// into a buffer that is attached to the next parsed entity.
	LineComment LineType = "comment"

	// LineVendor is a top-level vendor line with no indentation.
	LineVendor LineType = "vendor"

	// LineDevice is a device line indented by one tab below a vendor.
	LineDevice LineType = "device"

	// LineSubsystem is a subsystem line indented by two tabs below a device.
	LineSubsystem LineType = "subsystem"

	// LineDeviceClass is a class taxonomy line starting with 'C'.
	LineDeviceClass LineType = "device class"

	// LineDeviceSubclass is a subclass line indented by one tab below a
	// device class.
	LineDeviceSubclass LineType = "device subclass"

	// LineProgramInterface is a program interface line indented by two tabs
	// below a device subclass.
	LineProgramInterface LineType = "program interface"
)

// ContextError reports a line whose indentation implies a type that cannot
// legally follow the previous structural line.
type ContextError struct {
	// Line is the raw offending line.
	Line string

	// Previous is the type of the most recent structural line, or empty at
	// the start of input.
	Previous LineType
}

func (e *ContextError) Error() string {
	previous := string(e.Previous)
	if previous == "" {
		previous = "none"
	}
	return fmt.Sprintf("unexpected previous line type %s for line %q", previous, e.Line)
}

// Classify determines the type of line given the type of the previous
// structural line. The previous type is empty at the start of input and is
// never updated by comment lines.
//
// Indented lines are ambiguous on their own: one tab means device in the
// vendor tree but subclass in the class tree, two tabs mean subsystem or
// program interface. The previous type resolves the ambiguity; an indented
// line with no resolvable context yields a ContextError.
func Classify(line string, previous LineType) (LineType, error) {
	switch {
	case strings.HasPrefix(line, "#"):
		return LineComment, nil

	case strings.HasPrefix(line, "C"):
		return LineDeviceClass, nil

	case strings.HasPrefix(line, "\t\t"):
		switch previous {
		case LineDevice, LineSubsystem:
			return LineSubsystem, nil
		case LineDeviceSubclass, LineProgramInterface:
			return LineProgramInterface, nil
		default:
			return "", &ContextError{Line: line, Previous: previous}
		}

	case strings.HasPrefix(line, "\t"):
		switch previous {
		case LineVendor, LineDevice, LineSubsystem:
			return LineDevice, nil
		case LineDeviceClass, LineDeviceSubclass, LineProgramInterface:
			return LineDeviceSubclass, nil
		default:
			return "", &ContextError{Line: line, Previous: previous}
		}

	default:
		return LineVendor, nil
	}
}
