package errors

import (
	"context"
	stdErrors "errors"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
)

// Normalize 将领域层/基础设施层的错误规范化为 AppError。
//
// 注意：
//   - 已经是 AppError 的错误原样返回；
//   - 未识别的错误保持原样，不强行包装；
//   - 返回值只用于日志与边界层映射，用例层仍然返回原始错误。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(*AppError); ok {
		return err
	}

	var entityErr *domain.EntityValidationError
	if stdErrors.As(err, &entityErr) {
		return &AppError{Code: ErrCodeValidation, Op: "实体验证失败", Fields: entityErr.Fields(), Err: err}
	}

	var searchErr *domain.SearchValidationError
	if stdErrors.As(err, &searchErr) {
		return &AppError{Code: ErrCodeInvalidInput, Op: "查询参数无效", Fields: searchErr.Fields(), Err: err}
	}

	var notFound *domain.NotFoundError
	if stdErrors.As(err, &notFound) {
		return Wrap(err, ErrCodeNotFound, notFound.Entity+" 未找到")
	}

	var invalidID *domain.InvalidUuidError
	if stdErrors.As(err, &invalidID) {
		return Wrap(err, ErrCodeInvalidInput, "无效的标识")
	}

	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(err, ErrCodeNotFound, "记录未找到")
	}

	if stdErrors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "操作超时")
	}

	return err
}

// CodeOf 规范化后返回错误码
func CodeOf(err error) ErrorCode {
	return GetErrorCode(Normalize(err))
}
