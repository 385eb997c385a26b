package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyFile         = errors.New("file contains no rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFlushFailed       = errors.New("fact batch flush failed")
	ErrQueueFull         = errors.New("import queue is full")
	ErrQueueClosed       = errors.New("import queue is shut down")
)
