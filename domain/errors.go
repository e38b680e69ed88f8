package domain

import (
	"fmt"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

// IValidationError 校验类错误的公共接口，Fields 为 Notification.ToJSON 形式的载荷
type IValidationError interface {
	error
	Fields() []any
}

// ValidationError 校验错误基础结构（由具体错误类型嵌入）
type ValidationError struct {
	message string
	fields  []any
}

func (e *ValidationError) Error() string {
	return e.message
}

// Fields 返回字段错误载荷
func (e *ValidationError) Fields() []any {
	return e.fields
}

// EntityValidationError 聚合不变量校验失败
type EntityValidationError struct {
	ValidationError
}

// NewEntityValidationError 创建实体校验错误
func NewEntityValidationError(fields []any) *EntityValidationError {
	return &EntityValidationError{ValidationError{message: "Entity Validation Error", fields: fields}}
}

// EntityValidationErrorFrom 由 Notification 创建实体校验错误
func EntityValidationErrorFrom(n *validation.Notification) *EntityValidationError {
	return NewEntityValidationError(n.ToJSON())
}

// SearchValidationError 查询参数不合法
type SearchValidationError struct {
	ValidationError
}

// NewSearchValidationError 创建查询参数校验错误
func NewSearchValidationError(fields []any) *SearchValidationError {
	return &SearchValidationError{ValidationError{message: "Search Validation Error", fields: fields}}
}

// NotFoundError 按 ID 查找聚合失败
type NotFoundError struct {
	Entity string
	IDs    []string
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(entity string, ids ...string) *NotFoundError {
	return &NotFoundError{Entity: entity, IDs: ids}
}

func (e *NotFoundError) Error() string {
	return NotFoundMessage(e.Entity, e.IDs...)
}

// NotFoundMessage 统一的未找到消息格式
func NotFoundMessage(entity string, ids ...string) string {
	return fmt.Sprintf("%s not found using ID: %s", entity, strings.Join(ids, ", "))
}

// InvalidUuidError 标识格式错误
type InvalidUuidError struct {
	Value string
}

func (e *InvalidUuidError) Error() string {
	return fmt.Sprintf("ID must be a valid UUID: %q", e.Value)
}
