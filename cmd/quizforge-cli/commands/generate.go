package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/ui"
	"github.com/atlasedu/quizforge/internal/pipeline"
)

var (
	generateFile       string
	generateText       string
	generateDocument   string
	generateTitle      string
	generateSubject    string
	generateGrade      string
	generateTopic      string
	generateQuestions  int
	generateDifficulty string
	generateType       string
	generateLanguage   string
	generateJSON       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz from a file, inline text, or a stored document",
	Long: `Generate runs the full pipeline locally: extraction, OCR fallback for
scanned PDFs, summarization, question generation, and persistence.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateFile, "file", "", "path to a source document")
	generateCmd.Flags().StringVar(&generateText, "text", "", "inline source text")
	generateCmd.Flags().StringVar(&generateDocument, "document", "", "stored document id")
	generateCmd.Flags().StringVar(&generateTitle, "title", "", "quiz title (required)")
	generateCmd.Flags().StringVar(&generateSubject, "subject", "", "subject")
	generateCmd.Flags().StringVar(&generateGrade, "grade", "", "grade level")
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "topic focus")
	generateCmd.Flags().IntVarP(&generateQuestions, "questions", "n", 10, "number of questions")
	generateCmd.Flags().StringVar(&generateDifficulty, "difficulty", "", "easy, medium, or hard")
	generateCmd.Flags().StringVar(&generateType, "type", "", "question type")
	generateCmd.Flags().StringVar(&generateLanguage, "language", "", "two-letter language code")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the generated questions as JSON")
	generateCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	req, err := buildRequest()
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	orchestrator, err := buildOrchestrator(ctx, cfg, logger, db)
	if err != nil {
		return err
	}

	ui.Section("Quiz Generation")
	ui.Info("Title: %s", req.Title)
	ui.Info("Source: %s", string(req.SourceType))
	ui.Newline()

	bar := ui.NewProgressBar(100, "Starting")
	req.Observer = ui.RunObserver(bar)

	result, err := orchestrator.Generate(ctx, req)
	bar.Finish()
	if err != nil {
		ui.Error("Generation failed: %v", err)
		if stage, ok := pipeline.FailedStage(err); ok {
			ui.Error("Failed stage: %s", string(stage))
		}
		return err
	}

	ui.Success("Quiz saved: %s", result.QuizID)
	ui.Info("Questions: %d", len(result.Questions))

	if generateJSON {
		data, err := json.MarshalIndent(result.Questions, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}

func buildRequest() (pipeline.Request, error) {
	req := pipeline.Request{
		TeacherID:    teacherID,
		Title:        generateTitle,
		Subject:      generateSubject,
		Grade:        generateGrade,
		Topic:        generateTopic,
		NumQuestions: generateQuestions,
		Difficulty:   generateDifficulty,
		QuestionType: generateType,
		Language:     generateLanguage,
	}

	switch {
	case generateFile != "":
		data, err := os.ReadFile(generateFile)
		if err != nil {
			return req, fmt.Errorf("read source file: %w", err)
		}
		req.SourceType = pipeline.SourceUpload
		req.File = data
		req.FileName = filepath.Base(generateFile)
		req.FileMIME = detectMIME(generateFile, data)
	case generateText != "":
		req.SourceType = pipeline.SourceText
		req.SourceText = generateText
	case generateDocument != "":
		req.SourceType = pipeline.SourceDocument
		req.DocumentID = generateDocument
	default:
		return req, fmt.Errorf("one of --file, --text, or --document is required")
	}

	return req, nil
}

func detectMIME(path string, data []byte) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return mimeType
	}
	return http.DetectContentType(data)
}
