package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/ui"
	"github.com/atlasedu/quizforge/internal/pipeline"
)

var (
	batchConcurrency int
	batchQuestions   int
	batchSubject     string
	batchGrade       string
	batchDifficulty  string
	batchLanguage    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Generate quizzes from multiple files concurrently",
	Long: `Batch runs one pipeline per source file. Runs are independent: a
failed file does not stop the others, and each gets its own quiz.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "number of concurrent runs")
	batchCmd.Flags().IntVarP(&batchQuestions, "questions", "n", 10, "questions per quiz")
	batchCmd.Flags().StringVar(&batchSubject, "subject", "", "subject for all quizzes")
	batchCmd.Flags().StringVar(&batchGrade, "grade", "", "grade level for all quizzes")
	batchCmd.Flags().StringVar(&batchDifficulty, "difficulty", "", "easy, medium, or hard")
	batchCmd.Flags().StringVar(&batchLanguage, "language", "", "two-letter language code")
	rootCmd.AddCommand(batchCmd)
}

type batchOutcome struct {
	file   string
	quizID string
	err    error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	orchestrator, err := buildOrchestrator(ctx, cfg, logger, db)
	if err != nil {
		return err
	}

	ui.Section("Batch Generation")
	ui.Info("Files: %d, concurrency: %d", len(args), batchConcurrency)
	ui.Newline()

	var mu sync.Mutex
	outcomes := make([]batchOutcome, 0, len(args))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, file := range args {
		file := file
		g.Go(func() error {
			quizID, err := generateFromFile(gctx, orchestrator, file)

			mu.Lock()
			outcomes = append(outcomes, batchOutcome{file: file, quizID: quizID, err: err})
			mu.Unlock()

			if err != nil {
				ui.Error("%s: %v", file, err)
			} else {
				ui.Success("%s -> quiz %s", file, quizID)
			}
			// Failures are reported per file, never aborting the group.
			return nil
		})
	}

	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}

	ui.Newline()
	ui.Info("Completed: %d of %d", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

func generateFromFile(ctx context.Context, orchestrator *pipeline.Orchestrator, file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read source file: %w", err)
	}

	name := filepath.Base(file)
	title := strings.TrimSuffix(name, filepath.Ext(name))

	result, err := orchestrator.Generate(ctx, pipeline.Request{
		TeacherID:    teacherID,
		Title:        title,
		Subject:      batchSubject,
		Grade:        batchGrade,
		SourceType:   pipeline.SourceUpload,
		File:         data,
		FileName:     name,
		FileMIME:     detectMIME(file, data),
		NumQuestions: batchQuestions,
		Difficulty:   batchDifficulty,
		Language:     batchLanguage,
	})
	if err != nil {
		return "", err
	}
	return result.QuizID, nil
}
