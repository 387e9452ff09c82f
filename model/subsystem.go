package model

import (
	"strconv"

	"github.com/exodus-project/pciids/validate"
)

// SubsystemKey is the identity of a subsystem within a device's subsystem
// set. The comment field is deliberately excluded: it is treated as
// non-identifying metadata.
type SubsystemKey struct {
	SubvendorID string
	ID          string
	Name        string
}

// Subsystem represents a PCI device subsystem. It is identified by the
// combination of its own 16 bit ID and the 16 bit ID of the subsystem
// vendor. The subvendor ID may reference a different vendor than the one
// owning the device; it is a cross-reference, not ownership.
type Subsystem struct {
	id          string
	name        string
	comment     string
	subvendorID string

	numericID        uint64
	numericSubvendor uint64
}

// NewSubsystem creates a Subsystem. Both ids must be exactly four lowercase
// hex characters and the name must not be blank. An empty comment is replaced
// by NoComment.
func NewSubsystem(id, name, comment, subvendorID string) (*Subsystem, error) {
	if err := validate.HexID(subvendorID, 4, "subsystem vendor id"); err != nil {
		return nil, err
	}
	if err := validate.HexID(id, 4, "subsystem id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "subsystem name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}
	numericSubvendor, err := strconv.ParseUint(subvendorID, 16, 32)
	if err != nil {
		return nil, err
	}

	return &Subsystem{
		id:               id,
		name:             name,
		comment:          normalizeComment(comment),
		subvendorID:      subvendorID,
		numericID:        numeric,
		numericSubvendor: numericSubvendor,
	}, nil
}

// ID returns the four-character hex subsystem ID.
func (s *Subsystem) ID() string { return s.id }

// Name returns the subsystem name.
func (s *Subsystem) Name() string { return s.name }

// Comment returns the comment attached to the subsystem line, or NoComment.
func (s *Subsystem) Comment() string { return s.comment }

// SubvendorID returns the four-character hex ID of the subsystem vendor.
func (s *Subsystem) SubvendorID() string { return s.subvendorID }

// Key returns the identity of this subsystem within a device's set.
func (s *Subsystem) Key() SubsystemKey {
	return SubsystemKey{SubvendorID: s.subvendorID, ID: s.id, Name: s.name}
}

// less orders subsystems by numeric subvendor ID, then numeric subsystem ID.
func (s *Subsystem) less(other *Subsystem) bool {
	if s.numericSubvendor != other.numericSubvendor {
		return s.numericSubvendor < other.numericSubvendor
	}
	return s.numericID < other.numericID
}
