// Package memory provides in-memory adapters, used by tests and by editor runs that
// should not leave anything behind.
package memory
