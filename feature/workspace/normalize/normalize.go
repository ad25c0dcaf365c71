package normalize

import "strings"

// dynamicFields are server-managed keys stripped before any comparison or
// hashing, so identical logical configurations compare equal regardless of
// server-assigned identifiers.
var dynamicFields = map[string]struct{}{
	"accountId":        {},
	"containerId":      {},
	"workspaceId":      {},
	"path":             {},
	"fingerprint":      {},
	"tagManagerUrl":    {},
	"workspaceUrl":     {},
	"tagId":            {},
	"triggerId":        {},
	"variableId":       {},
	"templateId":       {},
	"zoneId":           {},
	"clientId":         {},
	"transformationId": {},
	"folderId":         {},
	"environmentId":    {},
	"parentFolderId":   {},
}

// convenienceFields are declaration-only helpers (name-based references and
// the content-hash pin). They are resolved or consumed by the sync driver and
// must never reach the API or participate in comparisons.
var convenienceFields = map[string]struct{}{
	"firingTriggerNames":           {},
	"blockingTriggerNames":         {},
	"customEvaluationTriggerNames": {},
	"tagNames":                     {},
	"triggerNames":                 {},
	"variableNames":                {},
	"contentHash":                  {},
}

// CloneValue returns a deep copy of a decoded YAML/JSON value tree.
func CloneValue(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, CloneValue(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = CloneValue(item)
		}
		return out
	default:
		return value
	}
}

// StripDynamic returns a deep copy of value with server-managed and
// declaration-only keys removed from every object, at any depth. Field order
// and everything else is left intact; the function is pure.
func StripDynamic(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, StripDynamic(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			if _, drop := dynamicFields[k]; drop {
				continue
			}
			if _, drop := convenienceFields[k]; drop {
				continue
			}
			if strings.HasPrefix(k, "__") {
				continue
			}
			out[k] = StripDynamic(item)
		}
		return out
	default:
		return value
	}
}
