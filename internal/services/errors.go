package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrDownload     = errors.New("download error")
	ErrModelLoad    = errors.New("model load error")
	ErrProcessing   = errors.New("processing error")
	ErrUpload       = errors.New("upload error")
	ErrEventPublish = errors.New("event publish error")
)

// Kind identifies one of the closed error categories a session can fail with.
type Kind string

const (
	KindValidation   Kind = "ValidationError"
	KindDownload     Kind = "DownloadError"
	KindModelLoad    Kind = "ModelLoadError"
	KindProcessing   Kind = "ProcessingError"
	KindUpload       Kind = "UploadError"
	KindEventPublish Kind = "EventPublishError"
	KindUnknown      Kind = "UnknownError"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrProcessing
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps a stage error to the error kind reported through metrics and
// failure events.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDownload):
		return KindDownload
	case errors.Is(err, ErrModelLoad):
		return KindModelLoad
	case errors.Is(err, ErrProcessing):
		return KindProcessing
	case errors.Is(err, ErrUpload):
		return KindUpload
	case errors.Is(err, ErrEventPublish):
		return KindEventPublish
	default:
		return KindUnknown
	}
}

// CallerFault reports whether the failure stems from defective caller input
// rather than worker-side trouble. Outer infrastructure uses this to decide
// against redelivery.
func CallerFault(err error) bool {
	return errors.Is(err, ErrValidation)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
