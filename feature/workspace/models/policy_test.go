package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gtm-sync/feature/workspace/models"
)

func TestCanDelete_DefaultAllows(t *testing.T) {
	ok, reason := models.Policy{}.CanDelete(models.TypeTags, "Old Tag")
	assert.True(t, ok)
	assert.Equal(t, models.DeleteAllowed, reason)
}

func TestCanDelete_DenyListWinsOverAllowList(t *testing.T) {
	policy := models.Policy{
		DeleteAllowTypes: []models.EntityType{models.TypeTags},
		DeleteDenyTypes:  []models.EntityType{models.TypeTags},
	}

	ok, reason := policy.CanDelete(models.TypeTags, "Old Tag")
	assert.False(t, ok)
	assert.Equal(t, models.DeniedByTypeDeny, reason)
}

func TestCanDelete_AllowListRestrictsOtherTypes(t *testing.T) {
	policy := models.Policy{
		DeleteAllowTypes: []models.EntityType{models.TypeTags},
	}

	ok, _ := policy.CanDelete(models.TypeTags, "Old Tag")
	assert.True(t, ok)

	ok, reason := policy.CanDelete(models.TypeTriggers, "Old Trigger")
	assert.False(t, ok)
	assert.Equal(t, models.DeniedByTypeAllow, reason)
}

func TestCanDelete_ProtectedNamesAreCaseInsensitive(t *testing.T) {
	policy := models.Policy{
		ProtectedNames: map[models.EntityType][]string{
			models.TypeTags: {"Keep Tag"},
		},
	}

	ok, reason := policy.CanDelete(models.TypeTags, "  keep tag ")
	assert.False(t, ok)
	assert.Equal(t, models.DeniedByProtection, reason)

	ok, _ = policy.CanDelete(models.TypeTriggers, "Keep Tag")
	assert.True(t, ok, "protection is scoped per type")
}
