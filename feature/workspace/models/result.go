package models

import (
	"fmt"
	"sort"
	"strings"
)

// EntitySummary holds the per-type outcome of one sync run. All four lists
// are emitted sorted so the output is stable and diffable.
type EntitySummary struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Deleted []string `json:"deleted"`
	Skipped []string `json:"skipped"`
}

// Sort orders every list case-insensitively.
func (s *EntitySummary) Sort() {
	sortNames(s.Created)
	sortNames(s.Updated)
	sortNames(s.Deleted)
	sortNames(s.Skipped)
}

// Empty reports whether the summary recorded nothing at all.
func (s *EntitySummary) Empty() bool {
	return len(s.Created) == 0 && len(s.Updated) == 0 && len(s.Deleted) == 0 && len(s.Skipped) == 0
}

// SyncResult aggregates the per-type summaries and non-fatal warnings of one
// sync run. It is the sole shape exposed to callers; rendering is theirs.
type SyncResult struct {
	WorkspacePath string                        `json:"workspacePath"`
	DryRun        bool                          `json:"dryRun"`
	Entities      map[EntityType]*EntitySummary `json:"entities"`
	Warnings      []string                      `json:"warnings"`
}

// NewSyncResult returns a result with a summary slot for every entity type
// plus the built-in variable toggles.
func NewSyncResult(workspacePath string, dryRun bool) *SyncResult {
	r := &SyncResult{
		WorkspacePath: workspacePath,
		DryRun:        dryRun,
		Entities:      make(map[EntityType]*EntitySummary, len(Types)+1),
		Warnings:      []string{},
	}
	for _, info := range Types {
		r.Entities[info.Type] = &EntitySummary{
			Created: []string{}, Updated: []string{}, Deleted: []string{}, Skipped: []string{},
		}
	}
	r.Entities[TypeBuiltIns] = &EntitySummary{
		Created: []string{}, Updated: []string{}, Deleted: []string{}, Skipped: []string{},
	}
	return r
}

// Summary returns the summary for one entity type.
func (r *SyncResult) Summary(t EntityType) *EntitySummary {
	return r.Entities[t]
}

// Warnf records a non-fatal warning. Warnings never abort a run.
func (r *SyncResult) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Sort orders every summary list and the warnings for deterministic output.
func (r *SyncResult) Sort() {
	for _, s := range r.Entities {
		s.Sort()
	}
	sort.Strings(r.Warnings)
}

func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}
