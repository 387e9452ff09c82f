package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/exodus-project/pciids/model"
)

// Sentinel errors raised when a child line appears without an open parent
// entry. They surface wrapped in the outer parse error and can be matched
// with errors.Is.
var (
	// ErrUnexpectedDevice indicates a device line with no open vendor entry.
	ErrUnexpectedDevice = errors.New("unexpected device line")

	// ErrUnexpectedSubsystem indicates a subsystem line with no open device
	// entry.
	ErrUnexpectedSubsystem = errors.New("unexpected subsystem line")

	// ErrUnexpectedSubclass indicates a subclass line with no open device
	// class entry.
	ErrUnexpectedSubclass = errors.New("unexpected device subclass line")

	// ErrUnexpectedInterface indicates a program interface line with no open
	// subclass entry.
	ErrUnexpectedInterface = errors.New("unexpected program interface line")
)

// Result holds the two fully assembled entity trees of one parse run.
type Result struct {
	// Vendors maps vendor id to the vendor tree.
	Vendors map[string]*model.Vendor

	// Classes maps device class id to the class taxonomy tree.
	Classes map[string]*model.DeviceClass
}

// Parser assembles pci.ids text into entity trees. The zero value is not
// usable; create instances with New. A Parser may be reused for sequential
// parses but is not safe for concurrent use.
type Parser struct {
	comment    string
	hasComment bool
}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse reads the complete pci.ids content from r and returns the assembled
// trees. Parsing stops at the first malformed or misplaced line; the returned
// error wraps the original cause and no partial result is returned.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	res, err := p.parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return res, nil
}

func (p *Parser) parse(r io.Reader) (*Result, error) {
	p.clearComment()

	res := &Result{
		Vendors: make(map[string]*model.Vendor),
		Classes: make(map[string]*model.DeviceClass),
	}

	// Open entries, one per tree level. A parent stays open while its child
	// lines are read and is committed when its next sibling starts or the
	// input ends.
	var (
		currentVendor   *model.Vendor
		currentDevice   *model.Device
		currentClass    *model.DeviceClass
		currentSubclass *model.DeviceSubclass
	)

	var previous LineType

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		// A blank line is a section break: it discards any accumulated
		// comment. This is how the file header commentary is dropped.
		if strings.TrimSpace(line) == "" {
			p.clearComment()
			continue
		}

		lineType, err := Classify(line, previous)
		if err != nil {
			return nil, err
		}

		switch lineType {
		case LineComment:
			p.appendComment(line)

		case LineVendor:
			previous = LineVendor

			if currentVendor != nil {
				if currentDevice != nil {
					currentVendor.AddDevice(currentDevice)
					currentDevice = nil
				}
				res.Vendors[currentVendor.ID()] = currentVendor
			}
			currentVendor, err = p.parseVendorLine(line)
			if err != nil {
				return nil, err
			}

		case LineDevice:
			previous = LineDevice

			if currentDevice != nil {
				if currentVendor == nil {
					return nil, fmt.Errorf("%w: %q", ErrUnexpectedDevice, line)
				}
				currentVendor.AddDevice(currentDevice)
			}
			currentDevice, err = p.parseDeviceLine(line)
			if err != nil {
				return nil, err
			}

		case LineSubsystem:
			previous = LineSubsystem

			if currentDevice == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnexpectedSubsystem, line)
			}
			subsystem, err := p.parseSubsystemLine(line)
			if err != nil {
				return nil, err
			}
			currentDevice.AddSubsystem(subsystem)

		case LineDeviceClass:
			previous = LineDeviceClass

			if currentClass != nil {
				if currentSubclass != nil {
					currentClass.AddSubclass(currentSubclass)
					currentSubclass = nil
				}
				res.Classes[currentClass.ID()] = currentClass
			}
			currentClass, err = p.parseDeviceClassLine(line)
			if err != nil {
				return nil, err
			}

		case LineDeviceSubclass:
			previous = LineDeviceSubclass

			if currentSubclass != nil {
				if currentClass == nil {
					return nil, fmt.Errorf("%w: %q", ErrUnexpectedSubclass, line)
				}
				currentClass.AddSubclass(currentSubclass)
			}
			currentSubclass, err = p.parseDeviceSubclassLine(line)
			if err != nil {
				return nil, err
			}

		case LineProgramInterface:
			previous = LineProgramInterface

			if currentSubclass == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnexpectedInterface, line)
			}
			iface, err := p.parseProgramInterfaceLine(line)
			if err != nil {
				return nil, err
			}
			currentSubclass.AddProgramInterface(iface)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// End of input commits whatever is still open.
	if currentVendor != nil {
		if currentDevice != nil {
			currentVendor.AddDevice(currentDevice)
		}
		res.Vendors[currentVendor.ID()] = currentVendor
	}
	if currentClass != nil {
		if currentSubclass != nil {
			currentClass.AddSubclass(currentSubclass)
		}
		res.Classes[currentClass.ID()] = currentClass
	}

	return res, nil
}

// parseVendorLine validates a vendor line and constructs the entity, claiming
// the pending comment.
func (p *Parser) parseVendorLine(line string) (*model.Vendor, error) {
	groups, err := matchLine(vendorPattern, LineVendor, line)
	if err != nil {
		return nil, err
	}
	return model.NewVendor(groups[0], groups[1], p.takeComment())
}

func (p *Parser) parseDeviceLine(line string) (*model.Device, error) {
	groups, err := matchLine(devicePattern, LineDevice, line)
	if err != nil {
		return nil, err
	}
	return model.NewDevice(groups[0], groups[1], p.takeComment())
}

func (p *Parser) parseSubsystemLine(line string) (*model.Subsystem, error) {
	groups, err := matchLine(subsystemPattern, LineSubsystem, line)
	if err != nil {
		return nil, err
	}
	// Capture order on the line is subvendor id, then subsystem id.
	return model.NewSubsystem(groups[1], groups[2], p.takeComment(), groups[0])
}

func (p *Parser) parseDeviceClassLine(line string) (*model.DeviceClass, error) {
	groups, err := matchLine(deviceClassPattern, LineDeviceClass, line)
	if err != nil {
		return nil, err
	}
	return model.NewDeviceClass(groups[0], groups[1], p.takeComment())
}

func (p *Parser) parseDeviceSubclassLine(line string) (*model.DeviceSubclass, error) {
	groups, err := matchLine(deviceSubclassPattern, LineDeviceSubclass, line)
	if err != nil {
		return nil, err
	}
	return model.NewDeviceSubclass(groups[0], groups[1], p.takeComment())
}

func (p *Parser) parseProgramInterfaceLine(line string) (*model.ProgramInterface, error) {
	groups, err := matchLine(programInterfacePattern, LineProgramInterface, line)
	if err != nil {
		return nil, err
	}
	return model.NewProgramInterface(groups[0], groups[1], p.takeComment())
}

// appendComment adds one comment line to the pending buffer. Multi-line
// comment blocks are joined with newlines, each line trimmed individually.
func (p *Parser) appendComment(line string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if p.hasComment {
		p.comment += "\n" + body
		return
	}
	p.comment = body
	p.hasComment = true
}

// takeComment returns the pending comment and clears the buffer. It returns
// the empty string when no comment is pending, which the entity constructors
// map to model.NoComment.
func (p *Parser) takeComment() string {
	if !p.hasComment {
		return ""
	}
	comment := p.comment
	p.clearComment()
	return comment
}

func (p *Parser) clearComment() {
	p.comment = ""
	p.hasComment = false
}
