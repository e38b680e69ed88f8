// Package castmember 演职人员聚合与用例
package castmember

import (
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

const EntityName = "CastMember"

// Type 演职人员类型
type Type string

const (
	Director Type = "director"
	Actor    Type = "actor"
)

// Types 合法类型
var Types = []string{string(Director), string(Actor)}

// CastMemberID 标识
type CastMemberID struct{ entity.Uuid }

func NewCastMemberID() CastMemberID { return CastMemberID{entity.NewUuid()} }

func ParseCastMemberID(s string) (CastMemberID, error) {
	u, err := entity.ParseUuid(s)
	if err != nil {
		return CastMemberID{}, err
	}
	return CastMemberID{u}, nil
}

// ParseCastMemberIDs 批量解析
func ParseCastMemberIDs(values []string) ([]CastMemberID, error) {
	out := make([]CastMemberID, 0, len(values))
	for _, v := range values {
		id, err := ParseCastMemberID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// CastMember 演职人员
type CastMember struct {
	entity.AggregateRoot
	id        CastMemberID
	name      string
	kind      Type
	createdAt time.Time

	notification *validation.Notification
}

var rules = []validation.Rule[*CastMember]{
	validation.Required("name", func(c *CastMember) string { return c.name }),
	validation.MaxLength("name", 255, func(c *CastMember) string { return c.name }),
	validation.OneOf("type", Types, func(c *CastMember) string { return string(c.kind) }),
}

// New 创建并校验
func New(name string, kind Type) *CastMember {
	c := &CastMember{
		id:           NewCastMemberID(),
		name:         name,
		kind:         kind,
		createdAt:    time.Now().UTC(),
		notification: validation.NewNotification(),
	}
	validation.Validate(c.notification, c, rules)
	return c
}

// Restore 从存储重建
func Restore(id CastMemberID, name string, kind Type, createdAt time.Time) *CastMember {
	return &CastMember{id: id, name: name, kind: kind, createdAt: createdAt, notification: validation.NewNotification()}
}

func (c *CastMember) ID() CastMemberID                       { return c.id }
func (c *CastMember) AggregateID() string                    { return c.id.String() }
func (c *CastMember) Name() string                           { return c.name }
func (c *CastMember) Type() Type                             { return c.kind }
func (c *CastMember) CreatedAt() time.Time                   { return c.createdAt }
func (c *CastMember) Notification() *validation.Notification { return c.notification }

func (c *CastMember) ChangeName(name string) {
	c.name = name
	validation.Validate(c.notification, c, rules, "name")
}

func (c *CastMember) ChangeType(kind Type) {
	c.kind = kind
	validation.Validate(c.notification, c, rules, "type")
}

func (c *CastMember) ToJSON() map[string]any {
	return map[string]any{
		"id":         c.id.String(),
		"name":       c.name,
		"type":       string(c.kind),
		"created_at": c.createdAt,
	}
}

func (c *CastMember) clone() *CastMember {
	return Restore(c.id, c.name, c.kind, c.createdAt)
}

var _ entity.IAggregateRoot = (*CastMember)(nil)
