package survey

import (
	"errors"
	"fmt"
)

// ErrClassification matches every ClassificationError via errors.Is.
var ErrClassification = errors.New("classification error")

// Classification error codes.
const (
	CodeUnknownType     = "unknown_type"
	CodeNonNumericScale = "non_numeric_scale"
	CodeNPSType         = "nps_type"
	CodeCSIType         = "csi_type"
	CodeTRType          = "tr_type"
	CodeROTIType        = "roti_type"
)

// ClassificationError is fatal to a whole report run and names the question
// that caused it.
type ClassificationError struct {
	Code       string
	QuestionID string
	Type       string
	Message    string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s (question %s)", e.Message, e.QuestionID)
}

func (e *ClassificationError) Is(target error) bool { return target == ErrClassification }

// NewClassificationError builds a ClassificationError for q.
func NewClassificationError(code string, q *Question, format string, args ...any) *ClassificationError {
	raw := q.RawType
	if raw == "" {
		raw = q.Type.String()
	}
	return &ClassificationError{
		Code:       code,
		QuestionID: q.ID,
		Type:       raw,
		Message:    fmt.Sprintf(format, args...),
	}
}
