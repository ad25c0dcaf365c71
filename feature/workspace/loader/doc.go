// Package loader reads desired-state documents from YAML files and renders
// live snapshots back into the same document shape. Multiple input files
// overlay in order, and every document is validated against an embedded JSON
// schema before it is accepted.
package loader
