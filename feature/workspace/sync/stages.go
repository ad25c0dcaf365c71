package sync

import (
	"fmt"
	"strings"

	"gtm-sync/feature/workspace/models"
	"gtm-sync/feature/workspace/normalize"
)

// resolver rewrites an entity's name-based references into the id form using
// the maps accumulated so far this run. Resolvers operate on a deep copy;
// the desired state itself is never mutated.
type resolver func(rc *runContext, e models.Entity) (models.Entity, error)

// stageResolvers binds the entity types that carry name-based references to
// their resolvers. Types absent from this map are applied as declared.
var stageResolvers = map[models.EntityType]resolver{
	models.TypeTags:  resolveTagRefs,
	models.TypeZones: resolveZoneRefs,
}

// typeLabels are the singular labels used in errors and warnings.
var typeLabels = map[models.EntityType]string{
	models.TypeEnvironments:    "environment",
	models.TypeTemplates:       "template",
	models.TypeVariables:       "variable",
	models.TypeBuiltIns:        "built-in variable",
	models.TypeClients:         "client",
	models.TypeTransformations: "transformation",
	models.TypeTriggers:        "trigger",
	models.TypeZones:           "zone",
	models.TypeTags:            "tag",
	models.TypeFolders:         "folder",
}

func label(t models.EntityType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// resolveTagRefs resolves firing and blocking trigger references by name.
func resolveTagRefs(rc *runContext, e models.Entity) (models.Entity, error) {
	if e.Fields == nil {
		return e, nil
	}
	out := e
	out.Fields = normalize.CloneValue(e.Fields).(map[string]any)
	if err := resolveTriggerNames(rc, out, out.Fields, "firingTriggerNames", "firingTriggerId"); err != nil {
		return out, err
	}
	if err := resolveTriggerNames(rc, out, out.Fields, "blockingTriggerNames", "blockingTriggerId"); err != nil {
		return out, err
	}
	return out, nil
}

// resolveZoneRefs resolves the evaluation-trigger references inside a zone
// boundary by name.
func resolveZoneRefs(rc *runContext, e models.Entity) (models.Entity, error) {
	if e.Fields == nil {
		return e, nil
	}
	out := e
	out.Fields = normalize.CloneValue(e.Fields).(map[string]any)
	boundary, ok := out.Fields["boundary"].(map[string]any)
	if !ok {
		return out, nil
	}
	if err := resolveTriggerNames(rc, out, boundary, "customEvaluationTriggerNames", "customEvaluationTriggerId"); err != nil {
		return out, err
	}
	return out, nil
}

// resolveTriggerNames replaces fields[namesKey] with fields[idKey] by looking
// the names up in the trigger id map. Specifying both forms at once is a
// fatal input error, as is a name with no known id.
func resolveTriggerNames(rc *runContext, e models.Entity, fields map[string]any, namesKey, idKey string) error {
	raw, ok := fields[namesKey]
	if !ok {
		return nil
	}
	if _, conflict := fields[idKey]; conflict {
		return fmt.Errorf("tag/zone %q specifies both %s and %s: %w", e.Name, namesKey, idKey, ErrConflictingReference)
	}
	ids := make([]any, 0)
	for _, name := range toStringList(raw) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		id, found := rc.lookupID(models.TypeTriggers, name)
		if !found {
			return fmt.Errorf("%q references unknown trigger %q: %w", e.Name, name, ErrUnresolvedReference)
		}
		ids = append(ids, id)
	}
	fields[idKey] = ids
	delete(fields, namesKey)
	return nil
}

func toStringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// entityPath returns the API path used to mutate an existing entity,
// preferring the server-provided path and falling back to deriving it from
// the id. Empty means the entity cannot be addressed.
func entityPath(workspacePath string, info models.TypeInfo, e models.Entity) string {
	if strings.TrimSpace(e.Path) != "" {
		return e.Path
	}
	if strings.TrimSpace(e.ID) != "" {
		return workspacePath + "/" + info.Collection + "/" + e.ID
	}
	return ""
}
