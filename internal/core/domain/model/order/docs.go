// Package order holds the Order aggregate as seen by the status lifecycle
// subsystem, together with the value types exchanged around a status change.
//
// The package includes:
//   - Order: the persisted order state (status, payment status, amount, version)
//   - Status and PaymentStatus: closed enumerations; no other value is representable
//     through the constructors and parsers of this package
//   - ValidationResult / ValidationError: the outcome of checking a requested transition
//   - StatusError: the typed error returned by every status changing operation
//
// Orders are never created here. They are rehydrated from storage through
// RestoreOrder and only change through ApplyStatusChange, after the transition
// has been validated, authorized and written with a compare-and-set on version.
package order
