// Package validation 提供字段级错误收集（Notification）与基于显式规则表的校验
package validation

import "encoding/json"

// entry 单个错误条目：带字段的消息列表，或一条无字段（全局）消息
type entry struct {
	field    string
	messages []string
	global   bool
}

// Notification 一次校验过程中收集的错误
//
// 字段按首次出现顺序保存；同一字段内消息去重。
// 无字段消息以消息本身作为键，重复添加只保留一条。
type Notification struct {
	entries []*entry
	index   map[string]*entry
}

// NewNotification 创建空的 Notification
func NewNotification() *Notification {
	return &Notification{index: make(map[string]*entry)}
}

func (n *Notification) lazyInit() {
	if n.index == nil {
		n.index = make(map[string]*entry)
	}
}

func (n *Notification) put(key string, e *entry) {
	if old, ok := n.index[key]; ok {
		old.field, old.messages, old.global = e.field, e.messages, e.global
		return
	}
	n.index[key] = e
	n.entries = append(n.entries, e)
}

// AddError 追加一条错误；未指定字段时作为全局错误
func (n *Notification) AddError(message string, field ...string) {
	n.lazyInit()
	if len(field) == 0 || field[0] == "" {
		n.put(message, &entry{field: message, messages: []string{message}, global: true})
		return
	}
	key := field[0]
	e, ok := n.index[key]
	if !ok || e.global {
		n.put(key, &entry{field: key, messages: []string{message}})
		return
	}
	for _, m := range e.messages {
		if m == message {
			return
		}
	}
	e.messages = append(e.messages, message)
}

// SetError 整体替换字段的消息列表；未指定字段时每条消息各自成为全局错误
func (n *Notification) SetError(messages []string, field ...string) {
	n.lazyInit()
	if len(field) == 0 || field[0] == "" {
		for _, m := range messages {
			n.put(m, &entry{field: m, messages: []string{m}, global: true})
		}
		return
	}
	n.put(field[0], &entry{field: field[0], messages: dedupe(messages)})
}

// SetMessage SetError 的单条消息形式
func (n *Notification) SetMessage(message string, field ...string) {
	n.SetError([]string{message}, field...)
}

// CopyErrors 合并另一个 Notification 的全部条目
func (n *Notification) CopyErrors(other *Notification) {
	if other == nil {
		return
	}
	n.lazyInit()
	for _, e := range other.entries {
		if e.global {
			n.put(e.field, &entry{field: e.field, messages: []string{e.field}, global: true})
			continue
		}
		n.SetError(e.messages, e.field)
	}
}

// HasErrors 是否存在错误
func (n *Notification) HasErrors() bool {
	return len(n.entries) > 0
}

// Messages 返回字段的消息副本
func (n *Notification) Messages(field string) []string {
	if n.index == nil {
		return nil
	}
	e, ok := n.index[field]
	if !ok || e.global {
		return nil
	}
	return append([]string(nil), e.messages...)
}

// ToJSON 按插入顺序输出：全局错误为字符串，字段错误为 {field: messages}
func (n *Notification) ToJSON() []any {
	out := make([]any, 0, len(n.entries))
	for _, e := range n.entries {
		if e.global {
			out = append(out, e.field)
			continue
		}
		out = append(out, map[string][]string{e.field: append([]string(nil), e.messages...)})
	}
	return out
}

// MarshalJSON 实现 json.Marshaler
func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

func dedupe(messages []string) []string {
	seen := make(map[string]struct{}, len(messages))
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
