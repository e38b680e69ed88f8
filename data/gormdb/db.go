// Package gormdb 打开 gorm 数据库连接（sqlite，modernc 纯 Go 驱动）
package gormdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gormdriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// Options 连接参数
type Options struct {
	// DSN sqlite 文件路径或 file: URI
	DSN string
	// MaxOpenConns sqlite 写连接建议为 1
	MaxOpenConns int
	MaxIdleConns int
	// SlowThreshold 慢查询阈值，0 表示不记录
	SlowThreshold time.Duration
	// Debug 记录全部 SQL
	Debug bool
}

// DefaultOptions 默认参数
func DefaultOptions(dsn string) Options {
	return Options{DSN: dsn, MaxOpenConns: 1, MaxIdleConns: 1, SlowThreshold: time.Second}
}

// Open 打开数据库并设置连接池与 PRAGMA
func Open(ctx context.Context, opts Options, logger logging.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("open db: empty dsn")
	}
	logger = logging.OrDefault(logger)

	db, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: opts.DSN}, &gorm.Config{
		Logger: NewGormLogger(logger, opts),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db: %w", err)
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 1
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := applyPragmas(ctx, sqlDB, !isMemory(opts.DSN)); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	logger.Info(ctx, "database opened", logging.String("dsn", opts.DSN))
	return db, nil
}

// FromSQL 在已有 *sql.DB 上构建 gorm 连接（测试与迁移后复用连接）
func FromSQL(sqlDB *sql.DB, logger logging.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(gormdriver.Dialector{DriverName: "sqlite", Conn: sqlDB}, &gorm.Config{
		Logger: NewGormLogger(logging.OrDefault(logger), Options{}),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}

// Close 关闭底层连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyPragmas(ctx context.Context, db *sql.DB, wal bool) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA temp_store = MEMORY;",
	}
	if wal {
		stmts = append(stmts, "PRAGMA journal_mode = WAL;", "PRAGMA synchronous = NORMAL;")
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// gormLogWriter 把 gorm 日志写入 logging.Logger
type gormLogWriter struct {
	logger logging.Logger
}

func (w gormLogWriter) Printf(format string, args ...any) {
	w.logger.Debug(context.Background(), fmt.Sprintf(format, args...))
}

// NewGormLogger 基于 logging.Logger 的 gorm 日志器
func NewGormLogger(logger logging.Logger, opts Options) gormlogger.Interface {
	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}
	return gormlogger.New(gormLogWriter{logger: logger.WithFields(logging.String("component", "gorm"))}, gormlogger.Config{
		SlowThreshold:             opts.SlowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}
