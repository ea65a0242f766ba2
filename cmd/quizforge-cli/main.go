// Package main provides the QuizForge CLI entrypoint.
package main

import (
	"os"

	"github.com/atlasedu/quizforge/cmd/quizforge-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
