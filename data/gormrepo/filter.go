package gormrepo

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscape LIKE 的转义字符；不用反斜杠，mysql 字符串字面量里它本身需要转义
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// EscapeLike 转义 LIKE 通配符，使 value 按字面匹配
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// Contains 不区分大小写的子串过滤，value 中的 % _ 按普通字符处理
func Contains(q *gorm.DB, column, value string) *gorm.DB {
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '"+likeEscape+"'", "%"+EscapeLike(strings.ToLower(value))+"%")
}
