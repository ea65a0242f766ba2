package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/ui"
	"github.com/atlasedu/quizforge/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the teacher's quizzes",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	repos := storage.NewRepositories(db)
	quizzes, err := repos.Quizzes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		ui.Info("No quizzes found for teacher %s", teacherID)
		return nil
	}

	ui.Section(fmt.Sprintf("Quizzes (%d)", len(quizzes)))
	for _, q := range quizzes {
		ui.Message("%s  %-10s  %2d questions  %s",
			q.ID.String(), statusLabel(q.Status), q.QuestionCount, q.Title)
	}
	return nil
}

func statusLabel(status storage.QuizStatus) string {
	if status == "" {
		return "unknown"
	}
	return string(status)
}
