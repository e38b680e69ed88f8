// Package retry 带指数退避的重试
package retry

import (
	"context"
	"math"
	"time"
)

// Operation 可重试的操作
type Operation func(ctx context.Context) error

// Config 重试配置
type Config struct {
	// MaxAttempts 最大尝试次数（含首次），<=0 视为 1
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration

	// Retryable 判断错误是否值得重试，nil 表示全部重试
	Retryable func(err error) bool
	// OnRetry 每次失败且即将重试时调用
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig 1 次初始 + 2 次重试，50ms 起指数退避
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      time.Second,
	}
}

// Delay 第 attempt 次失败后的等待时间
func (c Config) Delay(attempt int) time.Duration {
	factor := c.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	d := time.Duration(float64(c.InitialDelay) * math.Pow(factor, float64(attempt-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Do 执行 op 直到成功、错误不可重试、次数用尽或 ctx 取消；返回最后一次的错误
func Do(ctx context.Context, op Operation, cfg Config) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		delay := cfg.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}
