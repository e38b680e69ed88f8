package gormrepo

import (
	"fmt"

	"gorm.io/gorm"
)

// Link 多对多关联表描述
type Link struct {
	Table      string
	OwnerCol   string
	RelatedCol string
}

// Replace 以 relatedIDs 整体替换 owner 的关联行
func (l Link) Replace(tx *gorm.DB, ownerID string, relatedIDs []string) error {
	if err := tx.Table(l.Table).Where(fmt.Sprintf("%s = ?", l.OwnerCol), ownerID).Delete(map[string]any{}).Error; err != nil {
		return err
	}
	if len(relatedIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(relatedIDs))
	for _, id := range relatedIDs {
		rows = append(rows, map[string]any{l.OwnerCol: ownerID, l.RelatedCol: id})
	}
	return tx.Table(l.Table).Create(rows).Error
}

// Load 批量读取 owners 的关联 id，按 owner 分组
func (l Link) Load(tx *gorm.DB, ownerIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	var rows []map[string]any
	err := tx.Table(l.Table).
		Select(l.OwnerCol, l.RelatedCol).
		Where(fmt.Sprintf("%s IN ?", l.OwnerCol), ownerIDs).
		Order(l.RelatedCol).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		owner := fmt.Sprint(r[l.OwnerCol])
		out[owner] = append(out[owner], fmt.Sprint(r[l.RelatedCol]))
	}
	return out, nil
}

// Join 追加 `JOIN <table> ON <table>.<owner> = <rootIDColumn>` 并按关联 id 过滤
func (l Link) Join(q *gorm.DB, rootIDColumn string, relatedIDs []string) *gorm.DB {
	alias := l.Table
	return q.Joins(fmt.Sprintf("JOIN %s ON %s.%s = %s", alias, alias, l.OwnerCol, rootIDColumn)).
		Where(fmt.Sprintf("%s.%s IN ?", alias, l.RelatedCol), relatedIDs)
}
