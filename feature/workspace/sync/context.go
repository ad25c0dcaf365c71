package sync

import (
	"sort"

	"gtm-sync/core/gtm"
	"gtm-sync/feature/workspace/models"
)

// dryRunPendingID stands in for ids of entities a dry run would have
// created, so later stages can still resolve references to them. It is never
// sent anywhere: dry runs issue no mutating calls.
const dryRunPendingID = "(pending)"

// runContext carries the state accumulated while applying one sync run: the
// resolved workspace, the snapshot, the growing result, and the name→id and
// name→path maps reference resolution reads. It is scoped to a single run
// and discarded afterward.
type runContext struct {
	workspace *gtm.Workspace
	desired   *models.DesiredState
	snapshot  *models.Snapshot
	opts      models.SyncOptions
	result    *models.SyncResult

	ids   map[models.EntityType]map[string]string
	paths map[models.EntityType]map[string]string
}

func newRunContext(ws *gtm.Workspace, desired *models.DesiredState, snapshot *models.Snapshot, opts models.SyncOptions) *runContext {
	rc := &runContext{
		workspace: ws,
		desired:   desired,
		snapshot:  snapshot,
		opts:      opts,
		result:    models.NewSyncResult(ws.Path, opts.DryRun),
		ids:       make(map[models.EntityType]map[string]string, len(models.Types)),
		paths:     make(map[models.EntityType]map[string]string, len(models.Types)),
	}
	for _, info := range models.Types {
		rc.ids[info.Type] = make(map[string]string)
		rc.paths[info.Type] = make(map[string]string)
		for _, e := range snapshot.Entities(info.Type) {
			rc.record(info.Type, e.Name, e.ID, e.Path)
		}
	}
	return rc
}

func (rc *runContext) record(t models.EntityType, name, id, path string) {
	key := models.CanonicalName(name)
	if key == "" {
		return
	}
	if id != "" {
		rc.ids[t][key] = id
	}
	if path != "" {
		rc.paths[t][key] = path
	}
}

func (rc *runContext) lookupID(t models.EntityType, name string) (string, bool) {
	id, ok := rc.ids[t][models.CanonicalName(name)]
	return id, ok
}

func (rc *runContext) lookupPath(t models.EntityType, name string) (string, bool) {
	path, ok := rc.paths[t][models.CanonicalName(name)]
	return path, ok
}

func indexEntities(entities []models.Entity) map[string]models.Entity {
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

func sortedKeys(m map[string]models.Entity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
