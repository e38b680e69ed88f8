package gormrepo

import (
	"gorm.io/gorm"
)

// Paginate 先计数，再按 order/offset/limit 取一页
//
// q 应为已带 Model 与过滤条件的查询；计数在排序前执行。
func Paginate[T any](q *gorm.DB, order string, offset, limit int) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	if total == 0 {
		return rows, 0, nil
	}
	if err := q.Session(&gorm.Session{}).Order(order).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DistinctIDs 连接查询下的两阶段分页：先 COUNT(DISTINCT id)，再取一页按 order 排序的去重 id
//
// 关联表连接会让主表行重复，直接分页会让 total 与页内容失真；调用方随后按返回的 id 取完整行，
// 再用 ReorderByIDs 恢复顺序。
func DistinctIDs(q *gorm.DB, idColumn, order string, offset, limit int) ([]string, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Distinct(idColumn).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}
	var ids []string
	err := q.Session(&gorm.Session{}).
		Group(idColumn).
		Order(order).
		Offset(offset).
		Limit(limit).
		Pluck(idColumn, &ids).Error
	if err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// ReorderByIDs 按 ids 顺序重排 rows，丢弃不在 ids 中的行
func ReorderByIDs[T any](rows []T, ids []string, idOf func(T) string) []T {
	byID := make(map[string]T, len(rows))
	for _, r := range rows {
		byID[idOf(r)] = r
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
