package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atlasedu/quizforge/internal/observability"
)

const defaultSummaryStyle = "educational"

// Orchestrator sequences the pipeline stages for one run at a time. It
// holds no shared mutable state across runs, so independent runs may
// execute concurrently on separate goroutines.
type Orchestrator struct {
	logger      *observability.Logger
	deps        Dependencies
	opts        Options
	checkpoints *CheckpointStore
}

// New creates an orchestrator. checkpoints may be nil, in which case no
// run trail is persisted.
func New(logger *observability.Logger, deps Dependencies, opts Options, checkpoints *CheckpointStore) *Orchestrator {
	if logger == nil {
		logger = observability.Nop()
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = DefaultOptions().MinContentLength
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultOptions().MaxQuestions
	}
	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = DifficultyMedium
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = DefaultOptions().DefaultLanguage
	}
	if opts.DefaultType == "" {
		opts.DefaultType = DefaultOptions().DefaultType
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = DefaultOptions().SignedURLTTL
	}
	return &Orchestrator{
		logger:      logger,
		deps:        deps,
		opts:        opts,
		checkpoints: checkpoints,
	}
}

// Generate runs the whole pipeline for one request. Stages execute
// strictly in sequence; the first failing stage aborts the run. The
// orchestrator never retries a stage; a caller who wants a retry
// re-invokes the pipeline.
//
// The returned error is always one of the taxonomy types: use
// IsValidation, IsUnavailable, or FailedStage to classify it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	runID := req.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	run := &Run{ID: runID, Stage: StageIdle}
	logger := o.logger.WithRun(run.ID)

	req.normalize(o.opts)
	if err := req.validate(o.opts); err != nil {
		return nil, o.fail(ctx, run, req.Observer, StageIdle, err)
	}

	logger.Info().
		Str("teacher_id", req.TeacherID).
		Str("source", string(req.SourceType)).
		Int("num_questions", req.NumQuestions).
		Str("difficulty", req.Difficulty).
		Str("language", req.Language).
		Msg("pipeline run started")

	cleanText, err := o.acquireText(ctx, run, req)
	if err != nil {
		return nil, err
	}
	run.CleanText = cleanText

	// Hard precondition for summarization quality, enforced once for
	// every source path.
	if contentLength(cleanText) < o.opts.MinContentLength {
		verr := &ValidationError{Reason: fmt.Sprintf(
			"document content is too short: %d characters, need at least %d",
			contentLength(cleanText), o.opts.MinContentLength)}
		return nil, o.fail(ctx, run, req.Observer, run.Stage, verr)
	}

	if o.deps.Summarizer == nil {
		return nil, o.fail(ctx, run, req.Observer, StageSummarizing,
			&StageUnavailableError{Stage: StageSummarizing})
	}
	if o.deps.Generator == nil {
		return nil, o.fail(ctx, run, req.Observer, StageGenerating,
			&StageUnavailableError{Stage: StageGenerating})
	}
	if o.deps.Store == nil {
		return nil, o.fail(ctx, run, req.Observer, StageSaving,
			&StageUnavailableError{Stage: StageSaving})
	}

	o.emit(ctx, run, req.Observer, StageSummarizing, progressSummarizingStart, "Summarizing content")
	summary, err := o.deps.Summarizer.Summarize(ctx, cleanText, defaultSummaryStyle, req.Language)
	if err != nil {
		return nil, o.fail(ctx, run, req.Observer, StageSummarizing, err)
	}
	if summary == nil || contentLength(summary.Summary) == 0 {
		return nil, o.fail(ctx, run, req.Observer, StageSummarizing,
			&ContentError{Stage: StageSummarizing, Reason: "empty summary"})
	}
	run.Summary = summary.Summary
	o.emit(ctx, run, req.Observer, StageSummarizing, progressSummarizingDone, "Summary ready")

	o.emit(ctx, run, req.Observer, StageGenerating, progressGeneratingStart, "Generating questions")
	questions, err := o.deps.Generator.Generate(ctx, summary.Summary, req.params())
	if err != nil {
		return nil, o.fail(ctx, run, req.Observer, StageGenerating, err)
	}
	if len(questions) == 0 {
		return nil, o.fail(ctx, run, req.Observer, StageGenerating,
			&ContentError{Stage: StageGenerating, Reason: "no questions generated"})
	}
	run.Questions = questions
	o.emit(ctx, run, req.Observer, StageGenerating, progressGeneratingDone, "Questions ready")

	o.emit(ctx, run, req.Observer, StageSaving, progressSaving, "Saving quiz")
	quizID, err := o.deps.Store.SaveQuiz(ctx, QuizInput{
		TeacherID:  req.TeacherID,
		Title:      req.Title,
		Subject:    req.Subject,
		Grade:      req.Grade,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Language:   req.Language,
		SourceType: req.SourceType,
		DocumentID: req.DocumentID,
		FilePath:   run.UploadedFilePath,
		FileName:   run.UploadedFileName,
		Summary:    run.Summary,
		Questions:  questions,
	})
	if err != nil {
		return nil, o.fail(ctx, run, req.Observer, StageSaving, err)
	}

	run.Stage = StageCompleted
	run.Progress = progressCompleted
	o.notify(req.Observer, ProgressEvent{
		RunID:   run.ID,
		Stage:   StageCompleted,
		Percent: progressCompleted,
		Message: "Quiz ready",
	})
	o.checkpoint(ctx, Checkpoint{
		RunID:   run.ID,
		Stage:   StageCompleted,
		Percent: progressCompleted,
		QuizID:  quizID,
	})

	logger.Info().
		Str("quiz_id", quizID).
		Int("questions", len(questions)).
		Msg("pipeline run completed")

	return &Result{QuizID: quizID, Questions: questions, Summary: run.Summary}, nil
}

// acquireText resolves the request's source into clean summarizable
// text, branching on the source variant.
func (o *Orchestrator) acquireText(ctx context.Context, run *Run, req Request) (string, error) {
	switch req.SourceType {
	case SourceText:
		return StripPageMarkers(req.SourceText), nil

	case SourceDocument:
		if o.deps.Documents == nil {
			return "", o.fail(ctx, run, req.Observer, StageExtracting,
				&StageUnavailableError{Stage: StageExtracting})
		}
		o.emit(ctx, run, req.Observer, StageExtracting, progressExtracting, "Loading document")
		text, err := o.deps.Documents.DocumentText(ctx, req.DocumentID)
		if err != nil {
			return "", o.fail(ctx, run, req.Observer, StageExtracting, err)
		}
		// Stored document text is already clean.
		return text, nil

	case SourceUpload:
		return o.acquireUploadText(ctx, run, req)

	default:
		// validate() rejects unknown variants before we get here.
		return "", o.fail(ctx, run, req.Observer, StageIdle,
			&ValidationError{Reason: fmt.Sprintf("unknown source type %q", req.SourceType)})
	}
}

// acquireUploadText runs the upload, extract, and conditional OCR stages.
func (o *Orchestrator) acquireUploadText(ctx context.Context, run *Run, req Request) (string, error) {
	if o.deps.Uploader == nil {
		return "", o.fail(ctx, run, req.Observer, StageUploading,
			&StageUnavailableError{Stage: StageUploading})
	}
	if o.deps.Extractor == nil {
		return "", o.fail(ctx, run, req.Observer, StageExtracting,
			&StageUnavailableError{Stage: StageExtracting})
	}

	o.emit(ctx, run, req.Observer, StageUploading, progressUploading, "Uploading file")
	uploadCtx := ctx
	if o.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, o.opts.UploadTimeout)
		defer cancel()
	}
	path, err := o.deps.Uploader.Upload(uploadCtx, req.FileName, req.File, req.FileMIME)
	if err != nil {
		return "", o.fail(ctx, run, req.Observer, StageUploading, err)
	}
	// The stored path is permanent provenance even if a later stage
	// fails; orphan cleanup is a separate reconciliation concern.
	run.UploadedFilePath = path
	run.UploadedFileName = req.FileName

	o.emit(ctx, run, req.Observer, StageExtracting, progressExtracting, "Extracting text")
	doc, err := o.deps.Extractor.Extract(ctx, req.File, req.FileMIME)
	if err != nil {
		return "", o.fail(ctx, run, req.Observer, StageExtracting, err)
	}
	run.ExtractedText = doc.Text

	if !doc.NeedsOCR {
		return StripPageMarkers(doc.Text), nil
	}

	if o.deps.OCR == nil {
		return "", o.fail(ctx, run, req.Observer, StageOCR,
			&StageUnavailableError{Stage: StageOCR})
	}

	o.emit(ctx, run, req.Observer, StageOCR, progressOCRStart, "Running OCR on scanned document")
	signedURL, err := o.deps.Uploader.SignedURL(ctx, path, o.opts.SignedURLTTL)
	if err != nil {
		return "", o.fail(ctx, run, req.Observer, StageOCR, err)
	}
	ocrDoc, err := o.deps.OCR.Process(ctx, signedURL, req.FileName)
	if err != nil {
		return "", o.fail(ctx, run, req.Observer, StageOCR, err)
	}
	o.emit(ctx, run, req.Observer, StageOCR, progressOCRDone, "OCR complete")

	return StripPageMarkers(ocrDoc.Markdown()), nil
}

// emit records a stage transition: run state, observer event, checkpoint.
func (o *Orchestrator) emit(ctx context.Context, run *Run, obs Observer, stage Stage, percent int, message string) {
	run.Stage = stage
	run.Progress = percent
	run.Message = message

	o.logger.WithRun(run.ID).Debug().
		Str("stage", string(stage)).
		Int("percent", percent).
		Msg(message)

	o.notify(obs, ProgressEvent{RunID: run.ID, Stage: stage, Percent: percent, Message: message})
	o.checkpoint(ctx, Checkpoint{RunID: run.ID, Stage: stage, Percent: percent, Message: message})
}

// fail maps any stage error into the terminal failed state: it attaches
// the failing stage, emits the final failed event, checkpoints, and
// returns the error for the caller to handle. No rollback is performed.
func (o *Orchestrator) fail(ctx context.Context, run *Run, obs Observer, stage Stage, err error) error {
	if _, ok := FailedStage(err); !ok && !IsValidation(err) {
		err = &StageError{Stage: stage, Err: err}
	}

	run.Stage = StageFailed
	run.Progress = progressFailed
	run.Message = err.Error()

	o.logger.WithRun(run.ID).Error().
		Err(err).
		Str("failed_stage", string(stage)).
		Msg("pipeline run failed")

	o.notify(obs, ProgressEvent{
		RunID:   run.ID,
		Stage:   StageFailed,
		Percent: progressFailed,
		Message: err.Error(),
	})
	o.checkpoint(ctx, Checkpoint{
		RunID:       run.ID,
		Stage:       StageFailed,
		Percent:     progressFailed,
		Error:       err.Error(),
		FailedStage: stage,
	})

	return err
}

// notify delivers a progress event to the observer. Observer panics are
// contained so a misbehaving callback cannot abort a run.
func (o *Orchestrator) notify(obs Observer, ev ProgressEvent) {
	if obs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn().Str("run_id", ev.RunID).Msgf("progress observer panicked: %v", r)
		}
	}()
	obs(ev)
}

// checkpoint persists the run trail best-effort; a checkpoint write
// failure never fails the run.
func (o *Orchestrator) checkpoint(ctx context.Context, cp Checkpoint) {
	if o.checkpoints == nil {
		return
	}
	if err := o.checkpoints.Save(ctx, cp); err != nil {
		o.logger.Warn().Err(err).Str("run_id", cp.RunID).Msg("checkpoint write failed")
	}
}
