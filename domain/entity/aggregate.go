package entity

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
)

// EventHandler 聚合内部的事件处理函数，在 ApplyEvent 内同步调用
type EventHandler func(evt eventing.IDomainEvent)

// IAggregateRoot 聚合根接口
// 聚合根是事务一致性与事件产生的边界
type IAggregateRoot interface {
	// AggregateID 聚合标识（字符串形式）
	AggregateID() string

	// ApplyEvent 记录事件并同步触发本实例注册的处理器
	ApplyEvent(evt eventing.IDomainEvent)

	// RegisterHandler 为事件类型注册实例内处理器
	RegisterHandler(eventType string, handler EventHandler)

	// MarkEventAsDispatched 标记事件已分发（幂等）
	MarkEventAsDispatched(evt eventing.IDomainEvent)

	// UndispatchedEvents 已应用但未分发的事件，按应用顺序
	UndispatchedEvents() []eventing.IDomainEvent

	// Events 全部已应用事件，按应用顺序
	Events() []eventing.IDomainEvent

	// DispatchedEvents 已分发事件
	DispatchedEvents() []eventing.IDomainEvent

	// ResetEvents 清空已应用与已分发集合
	ResetEvents()

	// ToJSON 聚合的可序列化表示
	ToJSON() map[string]any
}

type handlerEntry struct {
	eventType string
	handler   EventHandler
}

// AggregateRoot 聚合根基础实现（嵌入使用）
//
// 使用场景:
//   - 状态通过传统 CRUD 持久化
//   - 事件用于进程内联动（提交前）与对外通知（提交后）
//
// 示例:
//
//	type Video struct {
//	    entity.AggregateRoot
//	    published bool
//	}
//
//	func NewVideo() *Video {
//	    v := &Video{}
//	    v.RegisterHandler(MediaStatusChangedType, v.onMediaStatusChanged)
//	    return v
//	}
//
// 处理器在持有锁之外调用，处理器内部可以再次调用 ApplyEvent。
type AggregateRoot struct {
	mu         sync.Mutex
	applied    []appliedEvent
	appliedIdx map[string]struct{}
	dispatched map[string]eventing.IDomainEvent
	dispOrder  []string
	anonSeq    int
	handlers   []handlerEntry
}

type appliedEvent struct {
	key string
	evt eventing.IDomainEvent
}

const anonPrefix = "anon:"

// identityKey 事件在聚合内的身份：优先 EventID；没有 ID 的指针事件按地址区分；
// 没有 ID 的值事件返回 ""，每次应用都视为新事件
func identityKey(evt eventing.IDomainEvent) string {
	if id := evt.EventID(); id != "" {
		return "id:" + id
	}
	if v := reflect.ValueOf(evt); v.Kind() == reflect.Pointer {
		return fmt.Sprintf("ptr:%x", v.Pointer())
	}
	return ""
}

func (a *AggregateRoot) lazyInit() {
	if a.appliedIdx == nil {
		a.appliedIdx = make(map[string]struct{})
	}
	if a.dispatched == nil {
		a.dispatched = make(map[string]eventing.IDomainEvent)
	}
}

// ApplyEvent 实现 IAggregateRoot 接口
func (a *AggregateRoot) ApplyEvent(evt eventing.IDomainEvent) {
	if evt == nil {
		return
	}
	a.mu.Lock()
	a.lazyInit()
	key := identityKey(evt)
	if key == "" {
		a.anonSeq++
		key = fmt.Sprintf("%s%d", anonPrefix, a.anonSeq)
	}
	if _, ok := a.appliedIdx[key]; !ok {
		a.appliedIdx[key] = struct{}{}
		a.applied = append(a.applied, appliedEvent{key: key, evt: evt})
	}
	var matched []EventHandler
	for _, h := range a.handlers {
		if h.eventType == evt.EventType() {
			matched = append(matched, h.handler)
		}
	}
	a.mu.Unlock()

	for _, h := range matched {
		h(evt)
	}
}

// RegisterHandler 实现 IAggregateRoot 接口
func (a *AggregateRoot) RegisterHandler(eventType string, handler EventHandler) {
	if handler == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, handlerEntry{eventType: eventType, handler: handler})
}

// MarkEventAsDispatched 实现 IAggregateRoot 接口
//
// 没有 ID 的值事件标记最早一个相等且未分发的已应用事件。
func (a *AggregateRoot) MarkEventAsDispatched(evt eventing.IDomainEvent) {
	if evt == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lazyInit()
	key := identityKey(evt)
	if key == "" {
		if key = a.pendingAnonymousLocked(evt); key == "" {
			return
		}
	}
	if _, ok := a.dispatched[key]; ok {
		return
	}
	a.dispatched[key] = evt
	a.dispOrder = append(a.dispOrder, key)
}

func (a *AggregateRoot) pendingAnonymousLocked(evt eventing.IDomainEvent) string {
	for _, ae := range a.applied {
		if !strings.HasPrefix(ae.key, anonPrefix) {
			continue
		}
		if _, done := a.dispatched[ae.key]; done {
			continue
		}
		if reflect.DeepEqual(ae.evt, evt) {
			return ae.key
		}
	}
	return ""
}

// UndispatchedEvents 实现 IAggregateRoot 接口
func (a *AggregateRoot) UndispatchedEvents() []eventing.IDomainEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]eventing.IDomainEvent, 0, len(a.applied))
	for _, ae := range a.applied {
		if _, ok := a.dispatched[ae.key]; ok {
			continue
		}
		out = append(out, ae.evt)
	}
	return out
}

// Events 实现 IAggregateRoot 接口
func (a *AggregateRoot) Events() []eventing.IDomainEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]eventing.IDomainEvent, len(a.applied))
	for i, ae := range a.applied {
		out[i] = ae.evt
	}
	return out
}

// DispatchedEvents 实现 IAggregateRoot 接口
func (a *AggregateRoot) DispatchedEvents() []eventing.IDomainEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]eventing.IDomainEvent, 0, len(a.dispOrder))
	for _, key := range a.dispOrder {
		out = append(out, a.dispatched[key])
	}
	return out
}

// ResetEvents 实现 IAggregateRoot 接口
//
// 从存储重建聚合时调用，避免历史事件被再次投递。
func (a *AggregateRoot) ResetEvents() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = nil
	a.appliedIdx = nil
	a.dispatched = nil
	a.dispOrder = nil
	a.anonSeq = 0
}
