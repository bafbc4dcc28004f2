package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("already exists")
	ErrInUse             = errors.New("still referenced by applications")
	ErrSubmit            = errors.New("could not save the submission, please retry")
	ErrBatchClosed       = errors.New("batch is not accepting candidates")
	ErrBatchFull         = errors.New("batch candidate limit reached")
	ErrNotCompleted      = errors.New("application is not completed")
	ErrReviewUnavailable = errors.New("AI review is not configured")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
