package wizard

import "errors"

var (
	ErrInvalidPlanSelection = errors.New("invalid plan selection")
	ErrScriptTooLong        = errors.New("script too long")
	ErrInvalidStageTarget   = errors.New("invalid stage target")
	ErrEmptyChannel         = errors.New("empty channel id")

	// Submission guards.
	ErrNotAtConfirm     = errors.New("order can only be submitted from the confirm stage")
	ErrNoChannels       = errors.New("no stations selected")
	ErrAlreadySubmitted = errors.New("order already submitted")
)
