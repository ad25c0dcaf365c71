package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripDynamic_RemovesServerFields(t *testing.T) {
	entity := map[string]any{
		"name":        "Tag A",
		"type":        "html",
		"tagId":       "123",
		"fingerprint": "xyz",
		"path":        "accounts/1/containers/2/workspaces/3/tags/123",
		"accountId":   "1",
		"containerId": "2",
		"workspaceId": "3",
		"parameter": []any{
			map[string]any{"key": "html", "value": "<script></script>", "fingerprint": "nested"},
		},
	}

	stripped, ok := StripDynamic(entity).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "Tag A", stripped["name"])
	assert.Equal(t, "html", stripped["type"])
	for _, key := range []string{"tagId", "fingerprint", "path", "accountId", "containerId", "workspaceId"} {
		assert.NotContains(t, stripped, key)
	}

	params := stripped["parameter"].([]any)
	require.Len(t, params, 1)
	assert.NotContains(t, params[0].(map[string]any), "fingerprint")
}

func TestStripDynamic_RemovesConvenienceFields(t *testing.T) {
	entity := map[string]any{
		"name":               "Tag A",
		"firingTriggerNames": []any{"All Pages"},
		"contentHash":        "abc",
		"__note":             "internal",
	}
	stripped := StripDynamic(entity).(map[string]any)
	assert.Equal(t, map[string]any{"name": "Tag A"}, stripped)
}

func TestStripDynamic_NormalizedFormsCompareEqual(t *testing.T) {
	entity := map[string]any{
		"name": "Trigger",
		"type": "PAGEVIEW",
	}
	withServerFields := map[string]any{
		"name":        "Trigger",
		"type":        "PAGEVIEW",
		"triggerId":   "42",
		"fingerprint": "abc",
	}
	assert.Equal(t, StripDynamic(entity), StripDynamic(withServerFields))
}

func TestStripDynamic_DoesNotMutateInput(t *testing.T) {
	entity := map[string]any{"name": "x", "tagId": "1", "nested": map[string]any{"path": "p", "keep": true}}
	_ = StripDynamic(entity)
	assert.Equal(t, "1", entity["tagId"])
	assert.Equal(t, "p", entity["nested"].(map[string]any)["path"])
}

func TestHash_StableAndContentSensitive(t *testing.T) {
	a := map[string]any{"name": "T", "parameter": []any{map[string]any{"key": "k", "value": "v"}}}
	b := map[string]any{"parameter": []any{map[string]any{"value": "v", "key": "k"}}, "name": "T"}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "key order must not affect the digest")
	assert.Len(t, ha, 64)

	c := map[string]any{"name": "T", "parameter": []any{map[string]any{"key": "k", "value": "changed"}}}
	hc, err := Hash(c)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestHash_IgnoresServerFields(t *testing.T) {
	plain := map[string]any{"name": "T", "templateData": "body"}
	live := map[string]any{"name": "T", "templateData": "body", "templateId": "9", "fingerprint": "f"}

	hp, err := Hash(plain)
	require.NoError(t, err)
	hl, err := Hash(live)
	require.NoError(t, err)
	assert.Equal(t, hp, hl)
}

func TestMergeDesired(t *testing.T) {
	current := map[string]any{
		"name":  "Tag A",
		"type":  "html",
		"notes": "keep me",
		"monitoring": map[string]any{
			"enabled": true,
			"sample":  10,
		},
		"firingTriggerId": []any{"1"},
	}
	desired := map[string]any{
		"type": "img",
		"monitoring": map[string]any{
			"sample": 20,
		},
		"firingTriggerId": []any{"2", "3"},
		"notes":           nil,
	}

	merged := MergeDesired(current, desired).(map[string]any)

	assert.Equal(t, "Tag A", merged["name"], "untouched fields survive")
	assert.Equal(t, "img", merged["type"], "scalars overwrite")
	assert.Nil(t, merged["notes"], "explicit null overwrites")
	assert.Equal(t, []any{"2", "3"}, merged["firingTriggerId"], "arrays are full replacements")

	monitoring := merged["monitoring"].(map[string]any)
	assert.Equal(t, true, monitoring["enabled"], "objects merge recursively")
	assert.Equal(t, 20, monitoring["sample"])

	// Inputs are not mutated.
	assert.Equal(t, "html", current["type"])
	assert.Equal(t, 10, current["monitoring"].(map[string]any)["sample"])
}
