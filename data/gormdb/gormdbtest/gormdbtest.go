// Package gormdbtest 提供测试用的临时 sqlite 数据库
package gormdbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/migrations"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// New 在 t.TempDir() 下创建已迁移的数据库，测试结束时关闭
func New(t testing.TB) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gormDB, err := gormdb.FromSQL(db, logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return gormDB
}
