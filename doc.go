// Package pciids provides an in-memory, queryable database of the PCI ID
// Repository (https://pci-ids.ucw.cz/).
//
// The pci.ids file is a line-oriented catalog of hardware identifiers: PCI
// vendors with their devices and device subsystems, plus a parallel taxonomy
// of device classes, subclasses and programming interfaces. This package
// parses that file into two entity trees and serves point and range queries
// over them.
//
// # Loading
//
// A Database starts empty and not ready. Load it from any reader, from raw
// bytes, or from the remote repository:
//
//	db, err := pciids.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := db.LoadRemote(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	vendors, err := db.FindAllVendors()
//
// Loading is an atomic bulk reload: the previous contents are cleared first
// and the new trees are installed only if the whole parse succeeds. A failed
// reload leaves the database empty and not ready; it never serves a half
// loaded state. Queries issued before a successful load fail with
// ErrNotReady.
//
// # Expression queries
//
// Beyond id lookups, devices can be matched with CEL expressions:
//
//	matches, err := db.FindDevicesWhere(`vendor.id == "8086" && device.name.contains("Ethernet")`)
//
// # Thread safety
//
// All Database methods are safe for concurrent use. Reloads and queries
// serialize on one exclusive lock for their entire duration.
package pciids
