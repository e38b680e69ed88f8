// Package server 驱动进程生命周期：配置 → 装配 → 后台任务 → 运行 → 优雅关闭
package server

import (
	"context"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// State 引擎所处阶段
type State int

const (
	StatePending State = iota
	StateInitializing
	StatePrepared // 依赖就绪
	StateRunning
	StateStopping
	StateStopped
	StateError
)

var stateNames = [...]string{"Pending", "Initializing", "Prepared", "Running", "Stopping", "Stopped", "Error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Hook 启动前 / 停止后的回调
type Hook func(ctx context.Context) error

// Options 引擎参数
type Options struct {
	Name    string
	Version string
	// StartupTimeout 只约束 SetupDependencies
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger

	BeforeStart []Hook
	AfterStop   []Hook
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Name:            "catalog-admin",
		Version:         "dev",
		StartupTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func WithVersion(v string) Option                { return func(o *Options) { o.Version = v } }
func WithStartupTimeout(d time.Duration) Option  { return func(o *Options) { o.StartupTimeout = d } }
func WithShutdownTimeout(d time.Duration) Option { return func(o *Options) { o.ShutdownTimeout = d } }
func WithLogger(l logging.Logger) Option         { return func(o *Options) { o.Logger = l } }

// WithBeforeStart 在 StartBackgroundTasks 之前执行；失败则直接关闭
func WithBeforeStart(h Hook) Option {
	return func(o *Options) { o.BeforeStart = append(o.BeforeStart, h) }
}

// WithAfterStop 在 Shutdown 之后执行；失败只记日志
func WithAfterStop(h Hook) Option {
	return func(o *Options) { o.AfterStop = append(o.AfterStop, h) }
}
