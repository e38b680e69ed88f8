package errors

import (
	"context"
	stdErrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// WrapDatabaseError 包装数据库错误并记录警告日志
//
// 记录未找到转换为 NOT_FOUND，其余统一为 DATABASE_ERROR。
func WrapDatabaseError(ctx context.Context, logger logging.Logger, err error, operation string) error {
	if err == nil {
		return nil
	}

	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(err, ErrCodeNotFound, operation)
	}

	logging.OrDefault(logger).Warn(ctx, fmt.Sprintf("数据库操作失败: %s", operation),
		logging.Error(err),
		logging.String("error_code", string(ErrCodeDatabase)),
		logging.String("operation", operation),
	)
	return Wrap(err, ErrCodeDatabase, fmt.Sprintf("数据库操作失败: %s", operation))
}
