package uow

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// GormUnitOfWork 基于 gorm 事务的工作单元
//
// Start 开启事务，Commit/Rollback 结束事务；仓储通过 DB() 或 GormDB(ctx, fallback) 参与该事务。
type GormUnitOfWork struct {
	registry
	db     *gorm.DB
	logger logging.Logger

	txMu sync.Mutex
	tx   *gorm.DB
}

// NewGormUnitOfWork 创建 gorm 工作单元
func NewGormUnitOfWork(db *gorm.DB, logger logging.Logger) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:     db,
		logger: logging.OrDefault(logger).WithFields(logging.String("component", "uow")),
	}
}

func (u *GormUnitOfWork) Start(ctx context.Context) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	if u.tx != nil {
		return ErrAlreadyStarted
	}
	u.clear()
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return &UowError{Code: ErrCodeBegin, Message: "begin transaction", Cause: tx.Error}
	}
	u.tx = tx
	u.logger.Debug(ctx, "transaction started")
	return nil
}

func (u *GormUnitOfWork) Commit(ctx context.Context) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	defer u.clear()
	if u.tx == nil {
		return ErrNotStarted
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit().Error; err != nil {
		return &UowError{Code: ErrCodeCommit, Message: "commit transaction", Cause: err}
	}
	u.logger.Debug(ctx, "transaction committed")
	return nil
}

// Rollback 未开启事务时只清空登记
func (u *GormUnitOfWork) Rollback(ctx context.Context) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	defer u.clear()
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback().Error; err != nil {
		return &UowError{Code: ErrCodeRollback, Message: "rollback transaction", Cause: err}
	}
	u.logger.Debug(ctx, "transaction rolled back")
	return nil
}

// Transaction 返回当前 *gorm.DB 事务，未开启时为 nil
func (u *GormUnitOfWork) Transaction() any {
	if tx := u.DB(); tx != nil {
		return tx
	}
	return nil
}

// DB 当前事务句柄，未开启时为 nil
func (u *GormUnitOfWork) DB() *gorm.DB {
	u.txMu.Lock()
	defer u.txMu.Unlock()
	return u.tx
}

func (u *GormUnitOfWork) AddAggregateRoot(agg entity.IAggregateRoot) {
	u.add(agg)
}

func (u *GormUnitOfWork) AggregateRoots() []entity.IAggregateRoot {
	return u.snapshot()
}

func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, u IUnitOfWork) error) error {
	if u.DB() == nil {
		if err := u.Start(ctx); err != nil {
			return err
		}
	}
	return fn(NewContext(ctx, u), u)
}

// GormDB 解析仓储应使用的 *gorm.DB：context 中有已开启的事务时返回事务，否则返回 fallback
func GormDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if u, ok := FromContext(ctx); ok {
		if tx, ok := u.Transaction().(*gorm.DB); ok && tx != nil {
			return tx.WithContext(ctx)
		}
	}
	return fallback.WithContext(ctx)
}

var _ IUnitOfWork = (*GormUnitOfWork)(nil)
