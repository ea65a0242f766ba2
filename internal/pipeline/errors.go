package pipeline

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed request. It is raised before any
// network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// StageUnavailableError reports that a required collaborator is not
// configured. Distinct from transient stage failures so callers can show
// a "feature disabled" message instead of "try again".
type StageUnavailableError struct {
	Stage Stage
}

func (e *StageUnavailableError) Error() string {
	return fmt.Sprintf("stage %s is not configured", e.Stage)
}

// StageError reports a failed collaborator call: network error, non-2xx
// response, or a malformed response body.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ContentError reports that a collaborator succeeded but returned
// unusable content, e.g. zero questions.
type ContentError struct {
	Stage  Stage
	Reason string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("stage %s returned unusable content: %s", e.Stage, e.Reason)
}

// FailedStage returns the stage at which err occurred, if it carries one.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	var ue *StageUnavailableError
	if errors.As(err, &ue) {
		return ue.Stage, true
	}
	var ce *ContentError
	if errors.As(err, &ce) {
		return ce.Stage, true
	}
	return "", false
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnavailable reports whether err means a collaborator is unconfigured.
func IsUnavailable(err error) bool {
	var ue *StageUnavailableError
	return errors.As(err, &ue)
}
