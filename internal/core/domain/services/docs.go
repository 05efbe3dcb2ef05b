// Package services provides the domain services of the order lifecycle.
//
// The package includes:
//   - TransitionTable: the directed graph of allowed status changes built from a Policy
//   - Precondition: CEL guards attached to individual edges
//   - StatusValidator: decides whether a requested change is possible
//   - PermissionGate: decides whether an operator may perform it
//
// All services are immutable after construction and safe for concurrent use.
package services
