// Package uph cleans units-per-hour exports from the wire-bond, die-attach
// and pick-and-place lines and averages UPH per BOM and machine model.
package uph
