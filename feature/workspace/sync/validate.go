package sync

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"gtm-sync/feature/workspace/models"
)

// Validate checks a desired state for the deterministic input errors that
// would otherwise surface mid-apply: empty names and case-insensitive
// duplicates within a type.
func Validate(desired *models.DesiredState) error {
	if strings.TrimSpace(desired.Workspace) == "" {
		return fmt.Errorf("workspace: %w", ErrEmptyName)
	}
	for _, info := range models.Types {
		seen := make(map[string]string)
		for _, e := range desired.Entities(info.Type) {
			key := models.CanonicalName(e.Name)
			if key == "" {
				return fmt.Errorf("%s: %w", label(info.Type), ErrEmptyName)
			}
			if first, dup := seen[key]; dup {
				return fmt.Errorf("%s %q collides with %q: %w", label(info.Type), e.Name, first, ErrDuplicateName)
			}
			seen[key] = e.Name
		}
	}
	seen := make(map[string]bool)
	for _, typ := range desired.BuiltInVariables {
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("built-in variable: %w", ErrEmptyName)
		}
		if seen[typ] {
			return fmt.Errorf("built-in variable %q: %w", typ, ErrDuplicateName)
		}
		seen[typ] = true
	}
	return nil
}

// variableRefPattern matches a {{ name }} reference inside a string value.
var variableRefPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// validateVariableRefs scans string values in the desired configuration for
// {{ name }} references that resolve to no known variable. The scan is
// best-effort and only ever emits warnings: built-in references use display
// names derived from the type identifier, which is a heuristic.
func validateVariableRefs(rc *runContext) {
	known := make(map[string]bool)
	for _, e := range rc.desired.Variables {
		known[models.CanonicalName(e.Name)] = true
	}
	for _, e := range rc.snapshot.Variables {
		known[models.CanonicalName(e.Name)] = true
	}
	for _, typ := range rc.desired.BuiltInVariables {
		known[models.CanonicalName(typ)] = true
		known[models.CanonicalName(builtInDisplayName(typ))] = true
	}
	for _, typ := range rc.snapshot.BuiltInVariables {
		known[models.CanonicalName(typ)] = true
		known[models.CanonicalName(builtInDisplayName(typ))] = true
	}

	unknown := make(map[string][]string)
	scan := func(t models.EntityType) {
		for _, e := range rc.desired.Entities(t) {
			for _, ref := range collectRefs(e.Fields) {
				if known[models.CanonicalName(ref)] {
					continue
				}
				unknown[ref] = append(unknown[ref], fmt.Sprintf("%s %q", label(t), e.Name))
			}
		}
	}
	scan(models.TypeTags)
	scan(models.TypeTriggers)
	scan(models.TypeVariables)

	refs := make([]string, 0, len(unknown))
	for ref := range unknown {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		sites := unknown[ref]
		sort.Strings(sites)
		rc.result.Warnf("reference {{%s}} in %s does not resolve to a known variable", ref, strings.Join(sites, ", "))
	}
}

// collectRefs gathers every {{ name }} reference from string leaves of a
// value tree, deduplicated.
func collectRefs(value any) []string {
	seen := make(map[string]bool)
	var walk func(any)
	walk = func(v any) {
		switch node := v.(type) {
		case string:
			for _, match := range variableRefPattern.FindAllStringSubmatch(node, -1) {
				seen[match[1]] = true
			}
		case []any:
			for _, item := range node {
				walk(item)
			}
		case map[string]any:
			for _, item := range node {
				walk(item)
			}
		}
	}
	walk(value)

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// builtInDisplayName derives the display name of a built-in variable from its
// type identifier: "clickClasses" becomes "Click Classes". This matches how
// the UI names the common built-ins; references to them use the display form.
func builtInDisplayName(typ string) string {
	var b strings.Builder
	for i, r := range typ {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
