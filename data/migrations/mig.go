// Package migrations 内嵌数据库结构迁移（goose）
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed files/*.sql
var migrationFS embed.FS

// goose 的 BaseFS/Dialect 是包级状态
var gooseMu sync.Mutex

// Up 执行全部未应用的迁移
func Up(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "files"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Down 回退最近一次迁移
func Down(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "files"); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// Version 当前数据库结构版本
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := setup(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return v, nil
}

func setup() error {
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}
