package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rule 一条字段校验规则：字段名 + 校验函数
//
// Check 返回该字段的错误消息列表，空表示通过。
type Rule[T any] struct {
	Field string
	Check func(v T) []string
}

// Validate 对 v 执行规则表，错误写入 n；fields 非空时只执行列出字段的规则
//
// 返回 true 表示本次执行的规则全部通过。
func Validate[T any](n *Notification, v T, rules []Rule[T], fields ...string) bool {
	wanted := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		wanted[f] = struct{}{}
	}
	ok := true
	for _, r := range rules {
		if len(wanted) > 0 {
			if _, hit := wanted[r.Field]; !hit {
				continue
			}
		}
		for _, msg := range r.Check(v) {
			n.AddError(msg, r.Field)
			ok = false
		}
	}
	return ok
}

// Required 字符串必填
func Required[T any](field string, get func(T) string) Rule[T] {
	return Rule[T]{Field: field, Check: func(v T) []string {
		if strings.TrimSpace(get(v)) == "" {
			return []string{fmt.Sprintf("%s should not be empty", field)}
		}
		return nil
	}}
}

// MaxLength 字符串最大长度（按字符计）
func MaxLength[T any](field string, max int, get func(T) string) Rule[T] {
	return Rule[T]{Field: field, Check: func(v T) []string {
		if utf8.RuneCountInString(get(v)) > max {
			return []string{fmt.Sprintf("%s must be shorter than or equal to %d characters", field, max)}
		}
		return nil
	}}
}

// MinInt 整数下限
func MinInt[T any](field string, min int, get func(T) int) Rule[T] {
	return Rule[T]{Field: field, Check: func(v T) []string {
		if get(v) < min {
			return []string{fmt.Sprintf("%s must not be less than %d", field, min)}
		}
		return nil
	}}
}

// MaxInt 整数上限
func MaxInt[T any](field string, max int, get func(T) int) Rule[T] {
	return Rule[T]{Field: field, Check: func(v T) []string {
		if get(v) > max {
			return []string{fmt.Sprintf("%s must not be greater than %d", field, max)}
		}
		return nil
	}}
}

// OneOf 枚举校验
func OneOf[T any](field string, allowed []string, get func(T) string) Rule[T] {
	return Rule[T]{Field: field, Check: func(v T) []string {
		value := get(v)
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return []string{fmt.Sprintf("%s must be one of the following values: %s", field, strings.Join(allowed, ", "))}
	}}
}
