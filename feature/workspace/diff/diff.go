// Package diff computes the change plan between a desired workspace state
// and a current snapshot. It performs no I/O and is safe to call repeatedly.
package diff

import (
	"sort"
	"strings"

	"gtm-sync/feature/workspace/models"
	"gtm-sync/feature/workspace/normalize"
)

// EntityDiff partitions one entity type into pending operations. All lists
// are sorted case-insensitively for deterministic, diffable output.
type EntityDiff struct {
	Create []string `json:"create"`
	Update []string `json:"update"`
	Delete []string `json:"delete"`
}

// BuiltInDiff is the pending toggle set for built-in variable types. Built-in
// variables have no update state: a type is either enabled or it is not.
type BuiltInDiff struct {
	Enable  []string `json:"enable"`
	Disable []string `json:"disable"`
}

// Result is the full per-type change plan.
type Result struct {
	Entities map[models.EntityType]EntityDiff `json:"entities"`
	BuiltIns BuiltInDiff                      `json:"builtInVariables"`
}

// Workspace diffs every entity type of desired against the snapshot. A
// desired entity without a current counterpart of the same name is a create;
// a name present on both sides is an update unless the normalized current
// entity already subset-matches the normalized desired one; current entities
// absent from desired are deletes.
func Workspace(desired *models.DesiredState, snapshot *models.Snapshot) *Result {
	result := &Result{
		Entities: make(map[models.EntityType]EntityDiff, len(models.Types)),
	}
	for _, info := range models.Types {
		result.Entities[info.Type] = Entities(desired.Entities(info.Type), snapshot.Entities(info.Type), info.IDKey)
	}
	result.BuiltIns = BuiltIns(desired.BuiltInVariables, snapshot.BuiltInVariables)
	return result
}

// Entities diffs a single entity type by case-insensitive name.
func Entities(desired, current []models.Entity, idKey string) EntityDiff {
	currentByName := indexByName(current)
	desiredNames := make(map[string]struct{}, len(desired))

	d := EntityDiff{Create: []string{}, Update: []string{}, Delete: []string{}}

	for _, want := range desired {
		key := models.CanonicalName(want.Name)
		if key == "" {
			continue
		}
		desiredNames[key] = struct{}{}
		have, exists := currentByName[key]
		if !exists {
			d.Create = append(d.Create, want.Name)
			continue
		}
		currentNorm := normalize.StripDynamic(have.AsMap(idKey))
		desiredNorm := normalize.StripDynamic(want.AsMap(idKey))
		if !normalize.Matches(currentNorm, desiredNorm) {
			d.Update = append(d.Update, want.Name)
		}
	}

	for key, have := range currentByName {
		if _, wanted := desiredNames[key]; !wanted {
			d.Delete = append(d.Delete, have.Name)
		}
	}

	sortNames(d.Create)
	sortNames(d.Update)
	sortNames(d.Delete)
	return d
}

// BuiltIns diffs the enabled built-in variable types as a flat string set.
func BuiltIns(desired, current []string) BuiltInDiff {
	d := BuiltInDiff{Enable: []string{}, Disable: []string{}}

	currentSet := make(map[string]string, len(current))
	for _, typ := range current {
		currentSet[models.CanonicalName(typ)] = typ
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, typ := range desired {
		key := models.CanonicalName(typ)
		desiredSet[key] = struct{}{}
		if _, enabled := currentSet[key]; !enabled {
			d.Enable = append(d.Enable, typ)
		}
	}
	for key, typ := range currentSet {
		if _, wanted := desiredSet[key]; !wanted {
			d.Disable = append(d.Disable, typ)
		}
	}

	sortNames(d.Enable)
	sortNames(d.Disable)
	return d
}

func indexByName(entities []models.Entity) map[string]models.Entity {
	out := make(map[string]models.Entity, len(entities))
	for _, e := range entities {
		key := models.CanonicalName(e.Name)
		if key == "" {
			continue
		}
		out[key] = e
	}
	return out
}

func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}
