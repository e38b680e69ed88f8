package search

import "strings"

// IsSortable 字段名是安全标识符且在允许列表中
func IsSortable(field string, sortable []string) bool {
	if !IsSafeFieldName(field) {
		return false
	}
	for _, s := range sortable {
		if s == field {
			return true
		}
	}
	return false
}

// IsSafeFieldName 判断字段名是否为安全标识符（foo、bar_1、table.column）
//
// 每段首字符为 [A-Za-z_]，其余为 [A-Za-z0-9_]。
func IsSafeFieldName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			letter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
			if i == 0 && !letter {
				return false
			}
			if i > 0 && !letter && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}
