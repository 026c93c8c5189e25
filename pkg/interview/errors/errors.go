package errors

import "fmt"

// AppError represents an application-level error with a code and optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	ErrCodeAnswerPipeline = "ANSWER_PIPELINE_FAILED"
	ErrCodeQuestionGen    = "QUESTION_GENERATION_FAILED"
	ErrCodeThinkerCall    = "THINKER_CALL_FAILED"
	ErrCodeMemoryWrite    = "MEMORY_WRITE_FAILED"
	ErrCodeMemoryRead     = "MEMORY_READ_FAILED"
	ErrCodeChannelSend    = "CHANNEL_SEND_FAILED"
	ErrCodeAnalyzerFailed = "ANALYZER_FAILED"
	ErrCodeRoleBuild      = "ROLE_BUILD_FAILED"
	ErrCodeInvalidConfig  = "CONFIG_INVALID"
)
