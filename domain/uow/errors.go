package uow

import "fmt"

// 错误码
const (
	ErrCodeNotStarted     = "UOW_NOT_STARTED"
	ErrCodeAlreadyStarted = "UOW_ALREADY_STARTED"
	ErrCodeBegin          = "UOW_BEGIN_FAILED"
	ErrCodeCommit         = "UOW_COMMIT_FAILED"
	ErrCodeRollback       = "UOW_ROLLBACK_FAILED"
)

// UowError 工作单元错误
type UowError struct {
	Code    string
	Message string
	Cause   error
}

func (e *UowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *UowError) Unwrap() error {
	return e.Cause
}

// Is 按错误码比较
func (e *UowError) Is(target error) bool {
	t, ok := target.(*UowError)
	return ok && t.Code == e.Code
}

var (
	ErrNotStarted     = &UowError{Code: ErrCodeNotStarted, Message: "unit of work not started"}
	ErrAlreadyStarted = &UowError{Code: ErrCodeAlreadyStarted, Message: "unit of work already started"}
)
