package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gtm-sync/core/gtm"
	"gtm-sync/feature/workspace/models"
	"gtm-sync/feature/workspace/normalize"
)

// Driver reconciles a declared workspace configuration against the live
// workspace. A run reads one snapshot, computes per-entity actions, and
// applies them in dependency order. Drivers are stateless between runs.
type Driver struct {
	svc         gtm.Service
	log         *zap.Logger
	accountID   string
	containerID string
}

func NewDriver(svc gtm.Service, log *zap.Logger, accountID, containerID string) *Driver {
	return &Driver{svc: svc, log: log, accountID: accountID, containerID: containerID}
}

// Sync applies desired to the workspace it names and returns the per-type
// summary. The desired state is never mutated. A dry run issues no mutating
// call and still reports the full plan.
func (d *Driver) Sync(ctx context.Context, desired *models.DesiredState, opts models.SyncOptions) (*models.SyncResult, error) {
	if err := Validate(desired); err != nil {
		return nil, err
	}

	ws, err := d.svc.EnsureWorkspace(ctx, d.accountID, d.containerID, desired.Workspace, !opts.DryRun)
	if err != nil {
		return nil, err
	}
	snapshot, err := d.fetchSnapshot(ctx, ws)
	if err != nil {
		return nil, err
	}

	rc := newRunContext(ws, desired, snapshot, opts)
	d.log.Info("starting sync",
		zap.String("workspace", ws.Path),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("delete_missing", opts.DeleteMissing),
	)

	for _, info := range models.Types {
		if err := d.applyStage(ctx, rc, info); err != nil {
			return nil, err
		}
		// Built-in toggles run right after variables so later stages can
		// already rely on them when validating references.
		if info.Type == models.TypeVariables {
			if err := d.applyBuiltIns(ctx, rc); err != nil {
				return nil, err
			}
		}
	}

	if err := d.applyFolderMembership(ctx, rc); err != nil {
		return nil, err
	}
	if opts.ValidateVariableRefs {
		validateVariableRefs(rc)
	}

	rc.result.Sort()
	return rc.result, nil
}

// Snapshot resolves a workspace by name and reads its complete live state.
func (d *Driver) Snapshot(ctx context.Context, workspaceName string, createIfMissing bool) (*models.Snapshot, error) {
	ws, err := d.svc.EnsureWorkspace(ctx, d.accountID, d.containerID, workspaceName, createIfMissing)
	if err != nil {
		return nil, err
	}
	return d.fetchSnapshot(ctx, ws)
}

// fetchSnapshot lists every collection of the workspace concurrently.
// Optional collections that the container type does not support come back as
// an empty list instead of failing the run.
func (d *Driver) fetchSnapshot(ctx context.Context, ws *gtm.Workspace) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{WorkspacePath: ws.Path}

	g, gctx := errgroup.WithContext(ctx)
	results := make([][]models.Entity, len(models.Types))
	for i, info := range models.Types {
		i, info := i, info
		g.Go(func() error {
			items, err := d.svc.List(gctx, ws.Path, info.Collection)
			if err != nil {
				if info.Optional && gtm.IsNotAvailable(err) {
					d.log.Debug("collection not available for this container",
						zap.String("collection", info.Collection))
					return nil
				}
				return fmt.Errorf("cannot list %s: %w", info.Collection, err)
			}
			entities := make([]models.Entity, 0, len(items))
			for _, item := range items {
				entities = append(entities, models.EntityFromMap(item, info.IDKey))
			}
			results[i] = entities
			return nil
		})
	}
	g.Go(func() error {
		builtIns, err := d.svc.ListEnabledBuiltIns(gctx, ws.Path)
		if err != nil {
			return fmt.Errorf("cannot list built-in variables: %w", err)
		}
		snapshot.BuiltInVariables = builtIns
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, info := range models.Types {
		snapshot.SetEntities(info.Type, results[i])
	}
	return snapshot, nil
}

// applyStage reconciles one entity type: create what is missing, update what
// drifted, and delete what the desired state no longer declares (behind the
// deletion policy).
func (d *Driver) applyStage(ctx context.Context, rc *runContext, info models.TypeInfo) error {
	summary := rc.result.Summary(info.Type)
	currentIdx := indexEntities(rc.snapshot.Entities(info.Type))
	seen := make(map[string]bool, len(currentIdx))

	for _, e := range rc.desired.Entities(info.Type) {
		resolved := e
		if resolve, ok := stageResolvers[info.Type]; ok {
			var err error
			if resolved, err = resolve(rc, e); err != nil {
				return err
			}
		}

		key := models.CanonicalName(e.Name)
		seen[key] = true
		current, exists := currentIdx[key]

		if !exists {
			if err := d.createEntity(ctx, rc, info, resolved, summary); err != nil {
				return err
			}
			continue
		}
		if !rc.opts.UpdateExisting {
			summary.Skipped = append(summary.Skipped, e.Name)
			continue
		}
		if err := d.updateEntity(ctx, rc, info, resolved, current, summary); err != nil {
			return err
		}
	}

	if rc.opts.DeleteMissing {
		if err := d.deleteMissing(ctx, rc, info, currentIdx, seen, summary); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) createEntity(ctx context.Context, rc *runContext, info models.TypeInfo, e models.Entity, summary *models.EntitySummary) error {
	if rc.opts.DryRun {
		summary.Created = append(summary.Created, e.Name)
		// Record a placeholder id so later stages can still resolve
		// references to the entity this run would have created.
		rc.record(info.Type, e.Name, dryRunPendingID, "")
		return nil
	}

	body := normalize.StripDynamic(e.AsMap("")).(map[string]any)
	created, err := d.svc.Create(ctx, rc.workspace.Path, info.Collection, body)
	if err != nil {
		return fmt.Errorf("cannot create %s %q: %w", label(info.Type), e.Name, err)
	}
	ce := models.EntityFromMap(created, info.IDKey)
	rc.record(info.Type, e.Name, ce.ID, ce.Path)
	summary.Created = append(summary.Created, e.Name)
	d.log.Info("created entity", zap.String("type", label(info.Type)), zap.String("name", e.Name))
	return nil
}

func (d *Driver) updateEntity(ctx context.Context, rc *runContext, info models.TypeInfo, desired, current models.Entity, summary *models.EntitySummary) error {
	// A content-hash pin freezes externally-sourced content at the state the
	// declaration was written against. A mismatch means the live entity moved
	// underneath the declaration and must not be silently overwritten.
	if pin := desired.StringField("contentHash"); pin != "" {
		liveHash, err := normalize.Hash(current.AsMap(info.IDKey))
		if err != nil {
			return fmt.Errorf("cannot hash %s %q: %w", label(info.Type), current.Name, err)
		}
		if liveHash != pin {
			return fmt.Errorf("%s %q: declared pin %s does not match live content %s: %w",
				label(info.Type), desired.Name, pin, liveHash, ErrContentHashMismatch)
		}
	}

	desiredStripped := normalize.StripDynamic(desired.AsMap("")).(map[string]any)
	currentStripped := normalize.StripDynamic(current.AsMap(info.IDKey)).(map[string]any)
	if normalize.Matches(currentStripped, desiredStripped) {
		summary.Skipped = append(summary.Skipped, desired.Name)
		return nil
	}
	if rc.opts.DryRun {
		summary.Updated = append(summary.Updated, desired.Name)
		return nil
	}

	path := entityPath(rc.workspace.Path, info, current)
	if path == "" {
		return fmt.Errorf("%s %q has neither path nor id: %w", label(info.Type), current.Name, ErrMissingIdentifier)
	}
	merged := normalize.MergeDesired(currentStripped, desiredStripped).(map[string]any)
	updated, err := d.svc.Update(ctx, path, merged, current.Fingerprint)
	if err != nil {
		return fmt.Errorf("cannot update %s %q: %w", label(info.Type), desired.Name, err)
	}
	ue := models.EntityFromMap(updated, info.IDKey)
	rc.record(info.Type, desired.Name, ue.ID, ue.Path)
	summary.Updated = append(summary.Updated, desired.Name)
	d.log.Info("updated entity", zap.String("type", label(info.Type)), zap.String("name", desired.Name))
	return nil
}

func (d *Driver) deleteMissing(ctx context.Context, rc *runContext, info models.TypeInfo, currentIdx map[string]models.Entity, seen map[string]bool, summary *models.EntitySummary) error {
	for _, key := range sortedKeys(currentIdx) {
		if seen[key] {
			continue
		}
		current := currentIdx[key]
		if ok, reason := rc.desired.Policy.CanDelete(info.Type, current.Name); !ok {
			summary.Skipped = append(summary.Skipped, current.Name)
			rc.result.Warnf("not deleting %s %q: %s", label(info.Type), current.Name, reason)
			continue
		}
		if rc.opts.DryRun {
			summary.Deleted = append(summary.Deleted, current.Name)
			continue
		}
		path := entityPath(rc.workspace.Path, info, current)
		if path == "" {
			return fmt.Errorf("%s %q has neither path nor id: %w", label(info.Type), current.Name, ErrMissingIdentifier)
		}
		if err := d.svc.Delete(ctx, path); err != nil {
			return fmt.Errorf("cannot delete %s %q: %w", label(info.Type), current.Name, err)
		}
		summary.Deleted = append(summary.Deleted, current.Name)
		d.log.Info("deleted entity", zap.String("type", label(info.Type)), zap.String("name", current.Name))
	}
	return nil
}

// applyBuiltIns reconciles the flat set of enabled built-in variable types.
// Enables are recorded as created, disables as deleted.
func (d *Driver) applyBuiltIns(ctx context.Context, rc *runContext) error {
	summary := rc.result.Summary(models.TypeBuiltIns)

	enabled := make(map[string]bool, len(rc.snapshot.BuiltInVariables))
	for _, typ := range rc.snapshot.BuiltInVariables {
		enabled[typ] = true
	}
	wanted := make(map[string]bool, len(rc.desired.BuiltInVariables))

	for _, typ := range rc.desired.BuiltInVariables {
		wanted[typ] = true
		if enabled[typ] {
			summary.Skipped = append(summary.Skipped, typ)
			continue
		}
		if rc.opts.DryRun {
			summary.Created = append(summary.Created, typ)
			continue
		}
		if err := d.svc.EnableBuiltIn(ctx, rc.workspace.Path, typ); err != nil {
			return fmt.Errorf("cannot enable built-in variable %q: %w", typ, err)
		}
		summary.Created = append(summary.Created, typ)
	}

	if !rc.opts.DeleteMissing {
		return nil
	}
	for _, typ := range rc.snapshot.BuiltInVariables {
		if wanted[typ] {
			continue
		}
		if ok, reason := rc.desired.Policy.CanDelete(models.TypeBuiltIns, typ); !ok {
			summary.Skipped = append(summary.Skipped, typ)
			rc.result.Warnf("not disabling built-in variable %q: %s", typ, reason)
			continue
		}
		if rc.opts.DryRun {
			summary.Deleted = append(summary.Deleted, typ)
			continue
		}
		if err := d.svc.DisableBuiltIn(ctx, rc.workspace.Path, typ); err != nil {
			return fmt.Errorf("cannot disable built-in variable %q: %w", typ, err)
		}
		summary.Deleted = append(summary.Deleted, typ)
	}
	return nil
}

// folderMemberLists maps the convenience list on a folder declaration to the
// entity type its members belong to.
var folderMemberLists = []struct {
	key string
	typ models.EntityType
}{
	{"tagNames", models.TypeTags},
	{"triggerNames", models.TypeTriggers},
	{"variableNames", models.TypeVariables},
}

// applyFolderMembership moves the entities each folder declaration names into
// that folder. It runs after every stage so membership can reference entities
// created this run. Membership is assignment-only: entities not named are
// left where they are.
func (d *Driver) applyFolderMembership(ctx context.Context, rc *runContext) error {
	for _, folder := range rc.desired.Folders {
		var tagIDs, triggerIDs, variableIDs []string
		declared := false
		for _, member := range folderMemberLists {
			names, ok := folder.StringListField(member.key)
			if !ok {
				continue
			}
			declared = true
			ids := make([]string, 0, len(names))
			for _, name := range names {
				id, found := rc.lookupID(member.typ, name)
				if !found {
					return fmt.Errorf("folder %q references unknown %s %q: %w",
						folder.Name, label(member.typ), name, ErrUnresolvedReference)
				}
				ids = append(ids, id)
			}
			switch member.typ {
			case models.TypeTags:
				tagIDs = ids
			case models.TypeTriggers:
				triggerIDs = ids
			case models.TypeVariables:
				variableIDs = ids
			}
		}
		if !declared || len(tagIDs)+len(triggerIDs)+len(variableIDs) == 0 {
			continue
		}
		if rc.opts.DryRun {
			rc.result.Warnf("folder %q membership is computed but not applied in a dry run", folder.Name)
			continue
		}
		folderID, found := rc.lookupID(models.TypeFolders, folder.Name)
		if !found {
			return fmt.Errorf("folder %q: %w", folder.Name, ErrMissingIdentifier)
		}
		folderPath, ok := rc.lookupPath(models.TypeFolders, folder.Name)
		if !ok {
			folderPath = rc.workspace.Path + "/folders/" + folderID
		}
		if err := d.svc.MoveEntitiesToFolder(ctx, folderPath, tagIDs, triggerIDs, variableIDs); err != nil {
			return fmt.Errorf("cannot move entities into folder %q: %w", folder.Name, err)
		}
		d.log.Info("moved entities into folder",
			zap.String("folder", folder.Name),
			zap.Int("tags", len(tagIDs)),
			zap.Int("triggers", len(triggerIDs)),
			zap.Int("variables", len(variableIDs)),
		)
	}
	return nil
}
