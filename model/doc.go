// Package model contains the entities assembled from the pci.ids file.
//
// Two independent trees are modeled. The vendor tree holds Vendor objects
// with their Device children and each device's Subsystem set. The class tree
// holds DeviceClass objects with DeviceSubclass children and each subclass's
// ProgramInterface entries.
//
// All identifiers are fixed-width lowercase hexadecimal strings. Entities are
// immutable after construction; child collections are populated exclusively
// by the parser through the Add* methods and exposed to callers as sorted
// snapshot slices.
package model
