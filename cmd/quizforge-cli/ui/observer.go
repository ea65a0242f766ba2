package ui

import (
	"github.com/atlasedu/quizforge/internal/pipeline"
)

// RunObserver returns a pipeline observer that drives a progress bar
// from stage waypoints. The terminal failed event leaves the bar where
// it is; the caller prints the error.
func RunObserver(bar *ProgressBar) pipeline.Observer {
	return func(ev pipeline.ProgressEvent) {
		if ev.Stage == pipeline.StageFailed {
			return
		}
		if ev.Message != "" {
			bar.Describe(ev.Message)
		}
		bar.Set(int64(ev.Percent))
	}
}
