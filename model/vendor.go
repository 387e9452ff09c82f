package model

import (
	"sort"
	"strconv"

	"github.com/exodus-project/pciids/validate"
)

// NoComment is the comment value assigned to entities whose defining line was
// not preceded by a comment block. It is deliberately not the empty string so
// that "no comment" and "comment present but empty after trimming" cannot be
// confused.
const NoComment = "no comment"

// Vendor represents a PCI vendor. Each vendor is identified by a unique
// 16 bit ID, represented as four lowercase hex characters, and carries a
// mandatory name. Devices are attached by the parser while the vendor entry
// is open.
type Vendor struct {
	id        string
	name      string
	comment   string
	numericID uint64

	devices map[string]*Device
}

// NewVendor creates a Vendor. The id must be exactly four lowercase hex
// characters and the name must not be blank. An empty comment is replaced by
// NoComment.
func NewVendor(id, name, comment string) (*Vendor, error) {
	if err := validate.HexID(id, 4, "vendor id"); err != nil {
		return nil, err
	}
	if err := validate.NonBlank(name, "vendor name"); err != nil {
		return nil, err
	}

	numeric, err := strconv.ParseUint(id, 16, 32)
	if err != nil {
		return nil, err
	}

	return &Vendor{
		id:        id,
		name:      name,
		comment:   normalizeComment(comment),
		numericID: numeric,
		devices:   make(map[string]*Device),
	}, nil
}

// ID returns the four-character hex vendor ID.
func (v *Vendor) ID() string { return v.id }

// Name returns the vendor name.
func (v *Vendor) Name() string { return v.name }

// Comment returns the comment attached to the vendor line, or NoComment.
func (v *Vendor) Comment() string { return v.comment }

// AddDevice attaches a device to this vendor. A device with the same ID
// replaces the previous entry.
func (v *Vendor) AddDevice(d *Device) {
	v.devices[d.ID()] = d
}

// Device returns the device with the given ID, or nil if the vendor has no
// such device.
func (v *Vendor) Device(id string) *Device {
	return v.devices[id]
}

// Devices returns all devices of this vendor ordered by ascending numeric ID.
func (v *Vendor) Devices() []*Device {
	rv := make([]*Device, 0, len(v.devices))
	for _, d := range v.devices {
		rv = append(rv, d)
	}
	sort.Slice(rv, func(i, j int) bool { return rv[i].numericID < rv[j].numericID })
	return rv
}

// Less orders vendors by the numeric value of their ID.
func (v *Vendor) Less(other *Vendor) bool {
	return v.numericID < other.numericID
}

// normalizeComment maps the absent comment to NoComment.
func normalizeComment(comment string) string {
	if comment == "" {
		return NoComment
	}
	return comment
}
