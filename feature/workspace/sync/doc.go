// Package sync drives one reconciliation run: it validates the desired
// state, snapshots the live workspace, and creates, updates, and deletes
// entities in dependency order. Deletions pass through the configured policy
// gate, and every mutating step honors dry-run mode.
package sync
