// Package operator models the back-office user who requests a status change.
// Authentication happens outside the core: handlers receive an already
// resolved Operator and the role comes from ports.PermissionService.
package operator
