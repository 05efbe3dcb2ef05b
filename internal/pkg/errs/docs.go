// Package errs provides the typed errors shared by the domain, the application
// layer and the persistence adapters.
//
// Every error type follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ErrVersionConflict, ...)
//     usable with errors.Is
//   - a struct carrying the offending parameter and an optional cause
//   - constructors with and without cause
//   - Unwrap returning the sentinel
//
// Repositories translate driver level failures into these types so that the
// application layer can classify failures without importing gorm.
package errs
