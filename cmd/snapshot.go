package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gtm-sync/core/storage"
	"gtm-sync/feature/workspace/loader"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	snapshotWorkspace string
	snapshotFormat    string
	snapshotOutput    string
	snapshotUpload    bool
)

// snapshotCmd exports the live workspace as a desired-state document.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export the live workspace as a desired-state document",
	Long: `Snapshot reads the live workspace and renders it as a desired-state
document: server-managed fields are stripped and every list is sorted, so the
output can be committed and fed back into sync or diff.

Examples:
  gtm-sync snapshot --workspace Main
  gtm-sync snapshot --workspace Main --format json --output main.json
  gtm-sync snapshot --workspace Main --upload`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotWorkspace, "workspace", "", "Workspace name to export")
	snapshotCmd.Flags().StringVar(&snapshotFormat, "format", loader.FormatYAML, "Output format (yaml or json)")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Write to file instead of stdout")
	snapshotCmd.Flags().BoolVar(&snapshotUpload, "upload", false, "Upload the document to the configured snapshot bucket")
	_ = snapshotCmd.MarkFlagRequired("workspace")

	RootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, driver, err := bootstrap()
	if err != nil {
		return err
	}

	snapshot, err := driver.Snapshot(ctx, snapshotWorkspace, false)
	if err != nil {
		return err
	}

	data, err := loader.ExportSnapshot(snapshot, snapshotWorkspace, snapshotFormat)
	if err != nil {
		return err
	}

	if snapshotOutput != "" {
		if err := os.WriteFile(snapshotOutput, data, 0o644); err != nil {
			return fmt.Errorf("cannot write %s: %w", snapshotOutput, err)
		}
		l.Info("Snapshot written", zap.String("path", snapshotOutput))
	} else if !snapshotUpload {
		fmt.Print(string(data))
	}

	if snapshotUpload {
		objectName, err := uploadSnapshot(ctx, cfg.Storage, data)
		if err != nil {
			return err
		}
		l.Info("Snapshot uploaded",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("object", objectName),
		)
	}
	return nil
}

// uploadSnapshot puts the rendered document into the snapshot bucket,
// creating the bucket on first use. Objects are keyed by workspace name and
// UTC timestamp so the archive keeps history.
func uploadSnapshot(ctx context.Context, cfg storage.Config, data []byte) (string, error) {
	client, err := storage.NewClient(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to connect to storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return "", fmt.Errorf("cannot check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return "", fmt.Errorf("cannot create bucket %q: %w", cfg.Bucket, err)
		}
	}

	extension := "yaml"
	contentType := "application/yaml"
	if snapshotFormat == loader.FormatJSON {
		extension = "json"
		contentType = "application/json"
	}
	objectName := fmt.Sprintf("%s/%s.%s",
		snapshotWorkspace,
		time.Now().UTC().Format("2006-01-02T15-04-05Z"),
		extension,
	)

	_, err = client.PutObject(ctx, cfg.Bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("cannot upload snapshot: %w", err)
	}
	return objectName, nil
}
