package search

import "strings"

// 过滤条件解析辅助函数，供各聚合的 FilterFunc 使用

// AsMap 原始过滤条件为对象时返回
func AsMap(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok && len(m) > 0
}

// AsString 非空字符串
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// AsStringSlice 接受 []string、[]any（字符串元素）或单个字符串；结果为空时返回 false
func AsStringSlice(v any) ([]string, bool) {
	var out []string
	switch t := v.(type) {
	case string:
		if s, ok := AsString(t); ok {
			out = append(out, s)
		}
	case []string:
		for _, s := range t {
			if s, ok := AsString(s); ok {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := AsString(e); ok {
				out = append(out, s)
			}
		}
	}
	return out, len(out) > 0
}
