// Package models defines the data shapes shared across the workspace
// reconciler: the entity types and their apply order, the semi-structured
// Entity, desired state and live snapshots, deletion policies, and the
// per-run result.
package models
