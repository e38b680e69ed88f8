// Package logging 提供统一的日志接口抽象
//
// 业务代码只依赖 Logger 接口；默认实现基于 logrus，测试中可替换为 NoopLogger。
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger 日志接口
type Logger interface {
	// Debug 调试日志
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info 信息日志
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn 警告日志
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error 错误日志
	Error(ctx context.Context, msg string, fields ...Field)

	// WithFields 添加字段，返回新的Logger
	WithFields(fields ...Field) Logger
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

// 字段构造函数
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Duration 以 time.Duration 作为字段值
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Options 日志构造选项
type Options struct {
	// Level debug|info|warn|error，默认 info
	Level string
	// Format text|json，默认 text
	Format string
	// Output 默认 os.Stderr
	Output io.Writer
}

// LogrusLogger 基于 logrus 的 Logger 实现
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger 包装已有的 logrus.Logger
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// New 按选项创建 logrus Logger
func New(opts Options) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}
	l.SetLevel(ParseLevel(opts.Level))
	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return NewLogrusLogger(l)
}

// ParseLevel 解析日志级别，无法识别时回退到 info
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func (l *LogrusLogger) with(ctx context.Context, fields []Field) *logrus.Entry {
	e := l.entry
	if ctx != nil {
		e = e.WithContext(ctx)
	}
	if len(fields) == 0 {
		return e
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && err != nil {
			data[f.Key] = err.Error()
			continue
		}
		data[f.Key] = f.Value
	}
	return e.WithFields(data)
}

func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.with(ctx, fields).Debug(msg)
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.with(ctx, fields).Info(msg)
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.with(ctx, fields).Warn(msg)
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.with(ctx, fields).Error(msg)
}

func (l *LogrusLogger) WithFields(fields ...Field) Logger {
	return &LogrusLogger{entry: l.with(nil, fields)}
}

// NoopLogger 空日志实现（用于测试）
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l *NoopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l *NoopLogger) WithFields(fields ...Field) Logger                      { return l }

// 全局Logger，仅作为未显式注入时的兜底
var globalLogger Logger = NewLogrusLogger(logrus.StandardLogger())

// SetLogger 设置全局Logger
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	globalLogger = logger
}

// GetLogger 获取全局Logger
func GetLogger() Logger {
	return globalLogger
}

// OrDefault 返回 l，若为 nil 则返回全局Logger
func OrDefault(l Logger) Logger {
	if l == nil {
		return globalLogger
	}
	return l
}
