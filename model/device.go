package model

import (
	"sort"
	"strconv"

	"github.com/exodus-project/pciids/validate"
)

// Device represents a PCI device. The 16 bit ID is unique within the scope of
// the owning vendor. Subsystems are attached by the parser while the device
// entry is open.
type Device struct {
	id        string
	name      string
	comment   string
	numericID uint64

	// Keyed by SubsystemKey: two subsystems that differ only in their
	// comment collapse into one entry.
	subsystems map[SubsystemKey]*Subsystem
}

// NewDevice creates a Device. The id must be exactly four lowercase hex
// characters and the name must not be blank. An empty comment is replaced by
// NoComment.
func NewDevice(id, name, comment string) (*Device, error) {
	if err := validate.HexID(id, 4, "device id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "device name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}

	return &Device{
		id:         id,
		name:       name,
		comment:    normalizeComment(comment),
		numericID:  numeric,
		subsystems: make(map[SubsystemKey]*Subsystem),
	}, nil
}

// ID returns the four-character hex device ID.
func (d *Device) ID() string { return d.id }

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Comment returns the comment attached to the device line, or NoComment.
func (d *Device) Comment() string { return d.comment }

// AddSubsystem attaches a subsystem to this device. Membership is keyed by
// (subvendor id, id, name); a subsystem differing from an existing entry only
// in its comment replaces that entry silently.
func (d *Device) AddSubsystem(s *Subsystem) {
	d.subsystems[s.Key()] = s
}

// Subsystems returns all subsystems of this device ordered by ascending
// numeric subvendor ID, then ascending numeric subsystem ID.
func (d *Device) Subsystems() []*Subsystem {
	rv := make([]*Subsystem, 0, len(d.subsystems))
	for _, s := range d.subsystems {
		rv = append(rv, s)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].less(rv[j]) })
	return rv
}

// SubsystemsBySubvendor returns the subsystems whose subvendor ID matches the
// given value, ordered by ascending numeric subsystem ID.
func (d *Device) SubsystemsBySubvendor(subvendorID string) []*Subsystem {
	rv := make([]*Subsystem, 0)
	for _, s := range d.subsystems {
		if s.SubvendorID() == subvendorID {
			rv = append(rv, s)
		}
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].numericID < rv[j].numericID })
	return rv
}
