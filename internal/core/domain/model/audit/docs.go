// Package audit holds the immutable record written for every applied order
// status change. Records are created once, inside the same transaction as the
// status write, and are never updated or deleted.
package audit
