// Package filter evaluates CEL expressions against entities of the vendor
// tree.
//
// Expressions see two map variables: "vendor" and "device", each exposing
// the id, name and comment fields of the respective entity. A compiled
// predicate can be evaluated repeatedly and is safe for concurrent use.
//
// Example expression:
//
//	vendor.id == "8086" && device.name.contains("Ethernet")
package filter
