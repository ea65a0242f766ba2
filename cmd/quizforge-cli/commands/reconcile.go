package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/ui"
	"github.com/atlasedu/quizforge/internal/storage"
)

var reconcileDelete bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Find and optionally delete orphaned uploads",
	Long: `Reconcile compares objects in the upload bucket against the paths
referenced by quizzes and documents. Uploads from failed runs are kept
deliberately at run time; this pass is where they get cleaned up.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileDelete, "delete", false, "delete orphaned objects instead of just listing them")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bucket, err := newBucket(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	repos := storage.NewRepositories(db)

	spin := ui.NewSpinner("Listing uploads")
	spin.Start()

	objects, err := bucket.List(ctx)
	if err != nil {
		spin.Stop()
		return fmt.Errorf("list uploads: %w", err)
	}

	spin.UpdateMessage("Collecting referenced paths")
	referenced := make(map[string]bool)

	quizPaths, err := repos.Quizzes.ListObjectPaths(ctx)
	if err != nil {
		spin.Stop()
		return fmt.Errorf("list quiz paths: %w", err)
	}
	for _, p := range quizPaths {
		referenced[p] = true
	}

	docPaths, err := repos.Documents.ListObjectPaths(ctx)
	if err != nil {
		spin.Stop()
		return fmt.Errorf("list document paths: %w", err)
	}
	for _, p := range docPaths {
		referenced[p] = true
	}

	spin.Stop()

	var orphans []string
	for _, obj := range objects {
		if !referenced[obj] {
			orphans = append(orphans, obj)
		}
	}

	ui.Section("Reconciliation")
	ui.Info("Objects in bucket: %d", len(objects))
	ui.Info("Referenced: %d", len(referenced))
	ui.Info("Orphaned: %d", len(orphans))

	if len(orphans) == 0 {
		ui.Success("Nothing to clean up")
		return nil
	}

	for _, obj := range orphans {
		ui.Message("  %s", obj)
	}

	if !reconcileDelete {
		ui.Newline()
		ui.Warning("Dry run: pass --delete to remove orphaned objects")
		return nil
	}

	deleted := 0
	for _, obj := range orphans {
		if err := bucket.Delete(ctx, obj); err != nil {
			ui.Error("delete %s: %v", obj, err)
			continue
		}
		deleted++
	}

	ui.Success("Deleted %d of %d orphaned objects", deleted, len(orphans))
	return nil
}
