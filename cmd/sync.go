package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"gtm-sync/feature/workspace/loader"
	"gtm-sync/feature/workspace/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync command
	syncFiles      []string
	syncDryRun     bool
	deleteMissing  bool
	updateExisting bool
	validateRefs   bool
	yesConfirm     bool
)

// syncCmd applies a desired-state document to the live workspace.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply a desired-state document to a workspace",
	Long: `Sync reconciles a declared workspace configuration against the live workspace.

Missing entities are created. Existing entities are updated only with
--update-existing, and entities absent from the declaration are deleted only
with --delete-missing (subject to the deletion policy in the document).

Examples:
  # Preview the full plan without touching the workspace
  gtm-sync sync -f workspace.yaml --dry-run

  # Create missing entities only
  gtm-sync sync -f workspace.yaml

  # Full reconciliation with overlay and auto-confirm (non-interactive)
  gtm-sync sync -f workspace.yaml -f prod.yaml --update-existing --delete-missing --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncFiles, "file", "f", nil, "Desired-state YAML file (repeatable, later files overlay earlier ones)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute and report the full plan without any mutating call")
	syncCmd.Flags().BoolVar(&deleteMissing, "delete-missing", false, "Delete entities absent from the declaration (policy-gated)")
	syncCmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update entities that already exist")
	syncCmd.Flags().BoolVar(&validateRefs, "validate-refs", false, "Warn about {{ name }} references that resolve to no known variable")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = syncCmd.MarkFlagRequired("file")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, l, driver, err := bootstrap()
	if err != nil {
		return err
	}

	desired, err := loader.Load(syncFiles...)
	if err != nil {
		return err
	}

	opts := models.SyncOptions{
		DryRun:               syncDryRun,
		DeleteMissing:        deleteMissing,
		UpdateExisting:       updateExisting,
		ValidateVariableRefs: validateRefs,
	}

	// Deletion is the one irreversible operation; ask before a live run that
	// has it enabled.
	if deleteMissing && !syncDryRun {
		if !confirmDestructiveAction() {
			l.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	result, err := driver.Sync(ctx, desired, opts)
	if err != nil {
		return err
	}

	printSyncResult(l, result)
	return nil
}

// printSyncResult logs the per-type outcome of a run.
func printSyncResult(l *zap.Logger, result *models.SyncResult) {
	if result.DryRun {
		l.Info("Dry-run mode: no changes were made.")
	}
	for _, info := range models.Types {
		logSummary(l, info.Type, result.Summary(info.Type))
	}
	logSummary(l, models.TypeBuiltIns, result.Summary(models.TypeBuiltIns))
	for _, warning := range result.Warnings {
		l.Warn(warning)
	}
}

func logSummary(l *zap.Logger, t models.EntityType, s *models.EntitySummary) {
	if s == nil || s.Empty() {
		return
	}
	l.Info("Sync summary",
		zap.String("type", string(t)),
		zap.Strings("created", s.Created),
		zap.Strings("updated", s.Updated),
		zap.Strings("deleted", s.Deleted),
		zap.Strings("skipped", s.Skipped),
	)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
