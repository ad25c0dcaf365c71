package models

import "strings"

// EntityType identifies one reconciled GTM resource collection.
type EntityType string

const (
	TypeEnvironments    EntityType = "environments"
	TypeTemplates       EntityType = "templates"
	TypeVariables       EntityType = "variables"
	TypeBuiltIns        EntityType = "builtInVariables"
	TypeClients         EntityType = "clients"
	TypeTransformations EntityType = "transformations"
	TypeTriggers        EntityType = "triggers"
	TypeZones           EntityType = "zones"
	TypeTags            EntityType = "tags"
	TypeFolders         EntityType = "folders"
)

// TypeInfo describes how one entity type maps onto the remote API.
type TypeInfo struct {
	// Type is the reconciler-facing identifier.
	Type EntityType
	// Collection is the REST collection segment (e.g. "tags").
	Collection string
	// IDKey is the server-assigned identifier field (e.g. "tagId").
	IDKey string
	// Optional marks collections the API may reject for some container
	// types; a "not available" listing error yields an empty list instead
	// of aborting the run.
	Optional bool
}

// Types lists every entity collection in apply order. Each type is applied
// only after the types it can reference by name: triggers before zones and
// tags, and folders last because folder membership needs the ids of
// tags/triggers/variables created earlier in the same run. Built-in variable
// toggles run between variables and clients and are not listed here because
// they are a flat identifier set, not full entities.
var Types = []TypeInfo{
	{Type: TypeEnvironments, Collection: "environments", IDKey: "environmentId"},
	{Type: TypeTemplates, Collection: "templates", IDKey: "templateId", Optional: true},
	{Type: TypeVariables, Collection: "variables", IDKey: "variableId"},
	{Type: TypeClients, Collection: "clients", IDKey: "clientId", Optional: true},
	{Type: TypeTransformations, Collection: "transformations", IDKey: "transformationId", Optional: true},
	{Type: TypeTriggers, Collection: "triggers", IDKey: "triggerId"},
	{Type: TypeZones, Collection: "zones", IDKey: "zoneId", Optional: true},
	{Type: TypeTags, Collection: "tags", IDKey: "tagId"},
	{Type: TypeFolders, Collection: "folders", IDKey: "folderId"},
}

// InfoFor returns the TypeInfo for t. It panics on unknown types because the
// set of types is fixed at compile time.
func InfoFor(t EntityType) TypeInfo {
	for _, info := range Types {
		if info.Type == t {
			return info
		}
	}
	panic("models: unknown entity type " + string(t))
}

// CanonicalName lowercases and trims a name for case-insensitive identity.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Entity is a semi-structured GTM resource: a typed core (name, server id,
// optimistic-concurrency fingerprint, API path) plus an open map of
// type-specific fields. Desired-state entities may carry convenience fields
// (name-based references, a content-hash pin) in Fields; those are stripped
// before anything is sent to the API.
type Entity struct {
	Name        string
	ID          string
	Fingerprint string
	Path        string
	Fields      map[string]any
}

// EntityFromMap builds an Entity from a raw API or file payload. The id is
// extracted using idKey; remaining fields stay in the open map.
func EntityFromMap(raw map[string]any, idKey string) Entity {
	e := Entity{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				e.Name = s
				continue
			}
		case idKey:
			if s, ok := v.(string); ok {
				e.ID = s
				continue
			}
		case "fingerprint":
			if s, ok := v.(string); ok {
				e.Fingerprint = s
				continue
			}
		case "path":
			if s, ok := v.(string); ok {
				e.Path = s
				continue
			}
		}
		e.Fields[k] = v
	}
	return e
}

// AsMap reconstructs the full payload shape, including the typed core fields
// when they are set.
func (e Entity) AsMap(idKey string) map[string]any {
	out := make(map[string]any, len(e.Fields)+4)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.Name != "" {
		out["name"] = e.Name
	}
	if e.ID != "" && idKey != "" {
		out[idKey] = e.ID
	}
	if e.Fingerprint != "" {
		out["fingerprint"] = e.Fingerprint
	}
	if e.Path != "" {
		out["path"] = e.Path
	}
	return out
}

// StringField returns a string-valued entry from the open field map.
func (e Entity) StringField(key string) string {
	if s, ok := e.Fields[key].(string); ok {
		return s
	}
	return ""
}

// StringListField returns a []string entry from the open field map,
// tolerating the []any shape produced by YAML/JSON decoding. The second
// return reports whether the key is present as a list at all.
func (e Entity) StringListField(key string) ([]string, bool) {
	raw, ok := e.Fields[key]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// DesiredState is the declared target configuration for one workspace.
type DesiredState struct {
	Workspace        string
	Policy           Policy
	BuiltInVariables []string
	Environments     []Entity
	Templates        []Entity
	Variables        []Entity
	Clients          []Entity
	Transformations  []Entity
	Triggers         []Entity
	Zones            []Entity
	Tags             []Entity
	Folders          []Entity
}

// Entities returns the desired list for one entity type.
func (d *DesiredState) Entities(t EntityType) []Entity {
	switch t {
	case TypeEnvironments:
		return d.Environments
	case TypeTemplates:
		return d.Templates
	case TypeVariables:
		return d.Variables
	case TypeClients:
		return d.Clients
	case TypeTransformations:
		return d.Transformations
	case TypeTriggers:
		return d.Triggers
	case TypeZones:
		return d.Zones
	case TypeTags:
		return d.Tags
	case TypeFolders:
		return d.Folders
	}
	return nil
}

// Snapshot is the live workspace state read at the start of a run. It is
// never persisted; every run re-derives it from the API.
type Snapshot struct {
	WorkspacePath    string
	BuiltInVariables []string
	Environments     []Entity
	Templates        []Entity
	Variables        []Entity
	Clients          []Entity
	Transformations  []Entity
	Triggers         []Entity
	Zones            []Entity
	Tags             []Entity
	Folders          []Entity
}

// Entities returns the current list for one entity type.
func (s *Snapshot) Entities(t EntityType) []Entity {
	switch t {
	case TypeEnvironments:
		return s.Environments
	case TypeTemplates:
		return s.Templates
	case TypeVariables:
		return s.Variables
	case TypeClients:
		return s.Clients
	case TypeTransformations:
		return s.Transformations
	case TypeTriggers:
		return s.Triggers
	case TypeZones:
		return s.Zones
	case TypeTags:
		return s.Tags
	case TypeFolders:
		return s.Folders
	}
	return nil
}

// SetEntities stores the current list for one entity type.
func (s *Snapshot) SetEntities(t EntityType, list []Entity) {
	switch t {
	case TypeEnvironments:
		s.Environments = list
	case TypeTemplates:
		s.Templates = list
	case TypeVariables:
		s.Variables = list
	case TypeClients:
		s.Clients = list
	case TypeTransformations:
		s.Transformations = list
	case TypeTriggers:
		s.Triggers = list
	case TypeZones:
		s.Zones = list
	case TypeTags:
		s.Tags = list
	case TypeFolders:
		s.Folders = list
	}
}

// SyncOptions controls one sync run.
type SyncOptions struct {
	// DryRun computes and reports the full plan without any mutating call.
	DryRun bool
	// DeleteMissing enables deletion of current entities absent from the
	// desired state, subject to the deletion policy.
	DeleteMissing bool
	// UpdateExisting enables updates of entities that already exist; when
	// false, existing entities are recorded as skipped.
	UpdateExisting bool
	// ValidateVariableRefs enables the best-effort {{ name }} reference
	// scan; findings are warnings, never errors.
	ValidateVariableRefs bool
}
