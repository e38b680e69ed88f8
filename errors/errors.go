// Package errors 应用层错误码
//
// 用例层返回领域错误原值；这里的 AppError 只在日志与边界映射时使用。
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCode 错误码
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"
)

// AppError 带错误码的错误
type AppError struct {
	Code ErrorCode
	// Op 出错的操作，如 "insert category"
	Op string
	// Fields 校验类错误的字段载荷（Notification.ToJSON 形式）
	Fields []any
	Err    error
}

// New 创建不带原因的错误
func New(code ErrorCode, op string) *AppError {
	return &AppError{Code: code, Op: op}
}

// Wrap 以错误码包装 err；err 为 nil 时返回 nil
func Wrap(err error, code ErrorCode, op string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Op: op, Err: err}
}

func (e *AppError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("[%s] %s", e.Code, e.Op)
	case e.Op == "":
		return fmt.Sprintf("[%s] %v", e.Code, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Op, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 错误码相同的 AppError 视为同类；其余交给 Unwrap 链
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// GetErrorCode 取错误码，非 AppError 视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsErrorCode 错误链上是否有指定错误码的 AppError
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}

func IsNotFound(err error) bool { return IsErrorCode(err, ErrCodeNotFound) }
