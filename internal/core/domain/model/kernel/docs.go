// Package kernel provides domain primitives shared by every aggregate of the
// order lifecycle.
//
// The package includes:
//   - UUID: a value object for identifiers that rejects the nil UUID and
//     compares by value
//
// Values are immutable and safe for concurrent use.
package kernel
