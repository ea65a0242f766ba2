package pipeline

// Stage identifies one step of the pipeline state machine.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageUploading   Stage = "uploading"
	StageExtracting  Stage = "extracting"
	StageOCR         Stage = "ocr"
	StageSummarizing Stage = "summarizing"
	StageGenerating  Stage = "generating"
	StageSaving      Stage = "saving"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
)

// Fixed progress waypoints per stage transition. Progress is reported as
// these named checkpoints, not computed from byte counts.
const (
	progressUploading        = 2
	progressExtracting       = 5
	progressOCRStart         = 10
	progressOCRDone          = 20
	progressSummarizingStart = 25
	progressSummarizingDone  = 35
	progressGeneratingStart  = 40
	progressGeneratingDone   = 85
	progressSaving           = 90
	progressCompleted        = 100
	progressFailed           = 0
)

// ProgressEvent is delivered to the caller's observer at each stage
// transition. Failure is signalled by Stage == StageFailed, not by the
// percentage (which resets to 0 on failure).
type ProgressEvent struct {
	RunID   string `json:"runId"`
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// Observer receives progress events. It is invoked synchronously on the
// pipeline's goroutine and must return quickly; the orchestrator does not
// wait on any work the observer hands off.
type Observer func(ProgressEvent)

// Run is the ephemeral state of one pipeline invocation. It is owned
// exclusively by that invocation and is not persisted; if the process
// dies mid-run only the checkpoint trail survives.
type Run struct {
	ID       string
	Stage    Stage
	Progress int
	Message  string

	ExtractedText string
	CleanText     string
	Summary       string
	Questions     []Question

	UploadedFilePath string
	UploadedFileName string
}
