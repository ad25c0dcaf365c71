package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"gtm-sync/feature/workspace/models"
)

//go:embed schema/desired_state.schema.json
var schemaFS embed.FS

var desiredStateSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schema/desired_state.schema.json")
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("desired_state.schema.json", bytes.NewReader(data)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("desired_state.schema.json")
}

// Load reads one or more YAML files, overlays them in order, validates the
// result against the desired-state schema, and converts it into a
// DesiredState. Later files override earlier ones: objects merge, everything
// else is replaced.
func Load(paths ...string) (*models.DesiredState, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no desired-state files given")
	}

	merged := make(map[string]any)
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(&merged, doc, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("cannot overlay %s: %w", path, err)
		}
	}

	// YAML decoding yields Go ints; the schema validator and the matcher both
	// expect JSON-shaped values, so the document is normalized through JSON
	// before anything reads it.
	doc, err := jsonRoundtrip(merged)
	if err != nil {
		return nil, err
	}
	if err := desiredStateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("desired state is invalid: %w", err)
	}
	return fromDocument(doc)
}

func jsonRoundtrip(doc map[string]any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize desired state: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cannot normalize desired state: %w", err)
	}
	return out, nil
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return doc, nil
}

// fromDocument converts a validated document into the typed desired state.
func fromDocument(doc map[string]any) (*models.DesiredState, error) {
	desired := &models.DesiredState{}
	desired.Workspace, _ = doc["workspace"].(string)
	desired.BuiltInVariables = stringList(doc["builtInVariables"])

	if rawPolicy, ok := doc["policy"].(map[string]any); ok {
		desired.Policy = parsePolicy(rawPolicy)
	}

	for _, info := range models.Types {
		raw, ok := doc[info.Collection].([]any)
		if !ok {
			continue
		}
		entities := make([]models.Entity, 0, len(raw))
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s entries must be objects", info.Collection)
			}
			entities = append(entities, models.EntityFromMap(m, info.IDKey))
		}
		setEntities(desired, info.Type, entities)
	}
	return desired, nil
}

func parsePolicy(raw map[string]any) models.Policy {
	policy := models.Policy{}
	if protected, ok := raw["protectedNames"].(map[string]any); ok {
		policy.ProtectedNames = make(map[models.EntityType][]string, len(protected))
		for key, names := range protected {
			policy.ProtectedNames[models.EntityType(key)] = stringList(names)
		}
	}
	for _, t := range stringList(raw["deleteAllowTypes"]) {
		policy.DeleteAllowTypes = append(policy.DeleteAllowTypes, models.EntityType(t))
	}
	for _, t := range stringList(raw["deleteDenyTypes"]) {
		policy.DeleteDenyTypes = append(policy.DeleteDenyTypes, models.EntityType(t))
	}
	return policy
}

func setEntities(d *models.DesiredState, t models.EntityType, list []models.Entity) {
	switch t {
	case models.TypeEnvironments:
		d.Environments = list
	case models.TypeTemplates:
		d.Templates = list
	case models.TypeVariables:
		d.Variables = list
	case models.TypeClients:
		d.Clients = list
	case models.TypeTransformations:
		d.Transformations = list
	case models.TypeTriggers:
		d.Triggers = list
	case models.TypeZones:
		d.Zones = list
	case models.TypeTags:
		d.Tags = list
	case models.TypeFolders:
		d.Folders = list
	}
}

func stringList(raw any) []string {
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
