package cmd

import (
	"context"

	"gtm-sync/feature/workspace/diff"
	"gtm-sync/feature/workspace/loader"
	"gtm-sync/feature/workspace/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var diffFiles []string

// diffCmd reports the change plan without applying anything.
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the change plan between a declaration and the live workspace",
	Long: `Diff reads the live workspace and reports which entities a sync would
create, update, or delete. It never issues a mutating call and never creates
the workspace.

Examples:
  gtm-sync diff -f workspace.yaml
  gtm-sync diff -f workspace.yaml -f prod.yaml`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringSliceVarP(&diffFiles, "file", "f", nil, "Desired-state YAML file (repeatable, later files overlay earlier ones)")
	_ = diffCmd.MarkFlagRequired("file")

	RootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, l, driver, err := bootstrap()
	if err != nil {
		return err
	}

	desired, err := loader.Load(diffFiles...)
	if err != nil {
		return err
	}

	snapshot, err := driver.Snapshot(ctx, desired.Workspace, false)
	if err != nil {
		return err
	}

	result := diff.Workspace(desired, snapshot)
	printDiff(l, result)
	return nil
}

func printDiff(l *zap.Logger, result *diff.Result) {
	changes := 0
	for _, info := range models.Types {
		d := result.Entities[info.Type]
		if len(d.Create)+len(d.Update)+len(d.Delete) == 0 {
			continue
		}
		changes += len(d.Create) + len(d.Update) + len(d.Delete)
		l.Info("Pending changes",
			zap.String("type", string(info.Type)),
			zap.Strings("create", d.Create),
			zap.Strings("update", d.Update),
			zap.Strings("delete", d.Delete),
		)
	}
	if len(result.BuiltIns.Enable)+len(result.BuiltIns.Disable) > 0 {
		changes += len(result.BuiltIns.Enable) + len(result.BuiltIns.Disable)
		l.Info("Pending changes",
			zap.String("type", string(models.TypeBuiltIns)),
			zap.Strings("enable", result.BuiltIns.Enable),
			zap.Strings("disable", result.BuiltIns.Disable),
		)
	}
	if changes == 0 {
		l.Info("Workspace matches the declaration. Nothing to do.")
	}
}
