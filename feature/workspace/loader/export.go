package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"gtm-sync/feature/workspace/models"
	"gtm-sync/feature/workspace/normalize"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportSnapshot renders a live snapshot as a desired-state document:
// server-managed fields are stripped and every list is sorted by name, so the
// output is stable, diffable, and loadable as input for a later sync.
func ExportSnapshot(snapshot *models.Snapshot, workspaceName, format string) ([]byte, error) {
	doc := map[string]any{"workspace": workspaceName}

	if len(snapshot.BuiltInVariables) > 0 {
		builtIns := append([]string(nil), snapshot.BuiltInVariables...)
		sort.Strings(builtIns)
		doc["builtInVariables"] = builtIns
	}

	for _, info := range models.Types {
		entities := snapshot.Entities(info.Type)
		if len(entities) == 0 {
			continue
		}
		items := make([]any, 0, len(entities))
		for _, e := range entities {
			items = append(items, normalize.StripDynamic(e.AsMap("")))
		}
		sort.Slice(items, func(i, j int) bool {
			return entityName(items[i]) < entityName(items[j])
		})
		doc[info.Collection] = items
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func entityName(item any) string {
	m, _ := item.(map[string]any)
	name, _ := m["name"].(string)
	return strings.ToLower(name)
}
