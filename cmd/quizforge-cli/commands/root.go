// Package commands implements the QuizForge CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	teacherID string
)

var rootCmd = &cobra.Command{
	Use:   "quizforge",
	Short: "QuizForge - generate quizzes from documents",
	Long: `QuizForge turns lesson material into multiple choice quizzes: it
extracts text from documents, falls back to OCR for scanned PDFs,
summarizes the content, and generates questions with an LLM.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&teacherID, "teacher", "dev", "acting teacher id")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
