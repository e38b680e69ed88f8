// Package entity 定义实体标识与聚合根基础实现
package entity

import (
	"github.com/google/uuid"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
)

// IEntity 带标识的实体
type IEntity[ID comparable] interface {
	// EntityID 返回实体标识
	EntityID() ID
}

// Uuid UUID 标识值对象，零值表示未设置
//
// 各聚合通过嵌入定义自己的标识类型：
//
//	type CategoryID struct{ entity.Uuid }
type Uuid struct {
	value uuid.UUID
}

// NewUuid 生成随机 UUID（v4）
func NewUuid() Uuid {
	return Uuid{value: uuid.New()}
}

// ParseUuid 解析字符串形式的 UUID
func ParseUuid(s string) (Uuid, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return Uuid{}, &domain.InvalidUuidError{Value: s}
	}
	return Uuid{value: v}, nil
}

// MustParseUuid 解析失败时 panic，仅用于测试与常量
func MustParseUuid(s string) Uuid {
	u, err := ParseUuid(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u Uuid) String() string {
	return u.value.String()
}

// IsZero 是否未设置
func (u Uuid) IsZero() bool {
	return u.value == uuid.Nil
}

// Equals 值相等
func (u Uuid) Equals(other Uuid) bool {
	return u.value == other.value
}

// MarshalText 实现 encoding.TextMarshaler
func (u Uuid) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (u *Uuid) UnmarshalText(text []byte) error {
	parsed, err := ParseUuid(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUuids 批量解析，返回第一个解析错误
func ParseUuids(values []string) ([]Uuid, error) {
	out := make([]Uuid, 0, len(values))
	for _, v := range values {
		u, err := ParseUuid(v)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
