package types

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION"
	CodeNotLoaded          = "NOT_LOADED"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeParseFailed        = "PARSE_FAILED"
	CodeEmptyDataset       = "EMPTY_DATASET"
	CodeNoData             = "NO_DATA"
	CodeNoChart            = "NO_CHART"
	CodeSnapshotNotFound   = "SNAPSHOT_NOT_FOUND"
	CodeCaptureUnavailable = "CAPTURE_UNAVAILABLE"
	CodeRenderFailed       = "RENDER_FAILED"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a *CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
