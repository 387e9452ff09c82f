package model

import (
	"sort"
	"strconv"

	"github.com/exodus-project/pciids/validate"
)

// DeviceClass represents an entry of the PCI device class taxonomy. Each
// class is identified by a unique 8 bit ID, represented as two lowercase hex
// characters. Subclasses are attached by the parser while the class entry is
// open.
type DeviceClass struct {
	id        string
	name      string
	comment   string
	numericID uint64

	subclasses map[string]*DeviceSubclass
}

// NewDeviceClass creates a DeviceClass. The id must be exactly two lowercase
// hex characters and the name must not be blank.
func NewDeviceClass(id, name, comment string) (*DeviceClass, error) {
	if err := validate.HexID(id, 2, "device class id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "device class name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}

	return &DeviceClass{
		id:         id,
		name:       name,
		comment:    normalizeComment(comment),
		numericID:  numeric,
		subclasses: make(map[string]*DeviceSubclass),
	}, nil
}

// ID returns the two-character hex class ID.
func (c *DeviceClass) ID() string { return c.id }

// Name returns the class name.
func (c *DeviceClass) Name() string { return c.name }

// Comment returns the comment attached to the class line, or NoComment.
func (c *DeviceClass) Comment() string { return c.comment }

// AddSubclass attaches a subclass to this class. A subclass with the same ID
// replaces the previous entry.
func (c *DeviceClass) AddSubclass(s *DeviceSubclass) {
	c.subclasses[s.ID()] = s
}

// Subclass returns the subclass with the given ID, or nil.
func (c *DeviceClass) Subclass(id string) *DeviceSubclass {
	return c.subclasses[id]
}

// Subclasses returns all subclasses ordered by ascending numeric ID.
func (c *DeviceClass) Subclasses() []*DeviceSubclass {
	rv := make([]*DeviceSubclass, 0, len(c.subclasses))
	for _, s := range c.subclasses {
		rv = append(rv, s)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].numericID < rv[j].numericID })
	return rv
}

// Less orders device classes by the numeric value of their ID.
func (c *DeviceClass) Less(other *DeviceClass) bool {
	return c.numericID < other.numericID
}

// DeviceSubclass represents a subclass within a device class. The 8 bit ID is
// unique within the owning class.
type DeviceSubclass struct {
	id        string
	name      string
	comment   string
	numericID uint64

	interfaces map[string]*ProgramInterface
}

// NewDeviceSubclass creates a DeviceSubclass. The id must be exactly two
// lowercase hex characters and the name must not be blank.
func NewDeviceSubclass(id, name, comment string) (*DeviceSubclass, error) {
	if err := validate.HexID(id, 2, "device subclass id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "device subclass name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}

	return &DeviceSubclass{
		id:         id,
		name:       name,
		comment:    normalizeComment(comment),
		numericID:  numeric,
		interfaces: make(map[string]*ProgramInterface),
	}, nil
}

// ID returns the two-character hex subclass ID.
func (s *DeviceSubclass) ID() string { return s.id }

// Name returns the subclass name.
func (s *DeviceSubclass) Name() string { return s.name }

// Comment returns the comment attached to the subclass line, or NoComment.
func (s *DeviceSubclass) Comment() string { return s.comment }

// AddProgramInterface attaches a program interface to this subclass. An
// interface with the same ID replaces the previous entry.
func (s *DeviceSubclass) AddProgramInterface(p *ProgramInterface) {
	s.interfaces[p.ID()] = p
}

// ProgramInterface returns the program interface with the given ID, or nil.
func (s *DeviceSubclass) ProgramInterface(id string) *ProgramInterface {
	return s.interfaces[id]
}

// ProgramInterfaces returns all program interfaces ordered by ascending
// numeric ID.
func (s *DeviceSubclass) ProgramInterfaces() []*ProgramInterface {
	rv := make([]*ProgramInterface, 0, len(s.interfaces))
	for _, p := range s.interfaces {
		rv = append(rv, p)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].numericID < rv[j].numericID })
	return rv
}

// ProgramInterface represents a programming interface within a device
// subclass. The 8 bit ID is unique within the owning subclass.
type ProgramInterface struct {
	id        string
	name      string
	comment   string
	numericID uint64
}

// NewProgramInterface creates a ProgramInterface. The id must be exactly two
// lowercase hex characters and the name must not be blank.
func NewProgramInterface(id, name, comment string) (*ProgramInterface, error) {
	if err := validate.HexID(id, 2, "program interface id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "program interface name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}

	return &ProgramInterface{
		id:        id,
		name:      name,
		comment:   normalizeComment(comment),
		numericID: numeric,
	}, nil
}

// ID returns the two-character hex program interface ID.
func (p *ProgramInterface) ID() string { return p.id }

// Name returns the program interface name.
func (p *ProgramInterface) Name() string { return p.name }

// Comment returns the comment attached to the interface line, or NoComment.
func (p *ProgramInterface) Comment() string { return p.comment }
