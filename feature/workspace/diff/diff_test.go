package diff

import (
	"testing"

	"gtm-sync/feature/workspace/models"

	"github.com/stretchr/testify/assert"
)

func entity(name string, fields map[string]any) models.Entity {
	return models.Entity{Name: name, Fields: fields}
}

func TestEntities_Partitions(t *testing.T) {
	desired := []models.Entity{
		entity("New Tag", map[string]any{"type": "html"}),
		entity("Changed Tag", map[string]any{"type": "img"}),
		entity("Same Tag", map[string]any{"type": "html"}),
	}
	current := []models.Entity{
		{Name: "Changed Tag", ID: "1", Fingerprint: "f1", Fields: map[string]any{"type": "html"}},
		{Name: "Same Tag", ID: "2", Fingerprint: "f2", Fields: map[string]any{"type": "html"}},
		{Name: "Old Tag", ID: "3", Fields: map[string]any{"type": "html"}},
	}

	d := Entities(desired, current, "tagId")

	assert.Equal(t, []string{"New Tag"}, d.Create)
	assert.Equal(t, []string{"Changed Tag"}, d.Update)
	assert.Equal(t, []string{"Old Tag"}, d.Delete)
}

func TestEntities_NameMatchingIsCaseInsensitive(t *testing.T) {
	desired := []models.Entity{entity("my tag", map[string]any{"type": "html"})}
	current := []models.Entity{{Name: "My Tag", ID: "1", Fields: map[string]any{"type": "html"}}}

	d := Entities(desired, current, "tagId")

	assert.Empty(t, d.Create)
	assert.Empty(t, d.Update)
	assert.Empty(t, d.Delete)
}

func TestEntities_ServerFieldsDoNotForceUpdates(t *testing.T) {
	desired := []models.Entity{entity("Tag", map[string]any{
		"type": "html",
		"parameter": []any{
			map[string]any{"key": "html", "value": "<b/>"},
		},
	})}
	current := []models.Entity{{
		Name:        "Tag",
		ID:          "7",
		Fingerprint: "live",
		Path:        "accounts/1/containers/2/workspaces/3/tags/7",
		Fields: map[string]any{
			"type": "html",
			"parameter": []any{
				map[string]any{"key": "html", "value": "<b/>"},
			},
			"firingTriggerId": []any{"9"},
			"tagManagerUrl":   "https://tagmanager.google.com/#/...",
		},
	}}

	d := Entities(desired, current, "tagId")
	assert.Empty(t, d.Update)
}

func TestEntities_SortedOutput(t *testing.T) {
	desired := []models.Entity{
		entity("zeta", nil),
		entity("Alpha", nil),
		entity("beta", nil),
	}

	d := Entities(desired, nil, "tagId")
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, d.Create)
}

func TestBuiltIns_SetDiff(t *testing.T) {
	d := BuiltIns([]string{"pageUrl", "clickClasses"}, []string{"pageUrl", "event"})

	assert.Equal(t, []string{"clickClasses"}, d.Enable)
	assert.Equal(t, []string{"event"}, d.Disable)
}

func TestWorkspace_CoversAllTypes(t *testing.T) {
	desired := &models.DesiredState{
		Workspace: "IaC",
		Triggers:  []models.Entity{entity("All Pages", map[string]any{"type": "PAGEVIEW"})},
		Tags:      []models.Entity{entity("Tag A", map[string]any{"type": "html"})},
	}
	snapshot := &models.Snapshot{
		Variables: []models.Entity{{Name: "Old Var", ID: "1"}},
	}

	result := Workspace(desired, snapshot)

	assert.Equal(t, []string{"All Pages"}, result.Entities[models.TypeTriggers].Create)
	assert.Equal(t, []string{"Tag A"}, result.Entities[models.TypeTags].Create)
	assert.Equal(t, []string{"Old Var"}, result.Entities[models.TypeVariables].Delete)
	assert.Len(t, result.Entities, len(models.Types))
}
