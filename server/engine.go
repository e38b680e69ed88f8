package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// IServer 应用需要实现的生命周期步骤
type IServer interface {
	Name() string

	// LoadConfig 解析配置文件与环境变量
	LoadConfig() error

	// SetupDependencies 打开数据库、构建传输与用例
	SetupDependencies(ctx context.Context) error

	// StartBackgroundTasks 启动消息消费等非阻塞任务
	StartBackgroundTasks(ctx context.Context) error

	// Run 阻塞运行，ctx 取消时返回
	Run(ctx context.Context) error

	// Shutdown 释放资源
	Shutdown(ctx context.Context) error
}

// Engine 按 LoadConfig -> Setup -> Background -> Run -> Shutdown 的顺序驱动 IServer
type Engine struct {
	server  IServer
	options *Options
	logger  logging.Logger

	mu    sync.RWMutex
	state State
}

func NewEngine(server IServer, opts ...Option) *Engine {
	options := defaultOptions()
	if name := server.Name(); name != "" {
		options.Name = name
	}
	for _, o := range opts {
		o(options)
	}
	return &Engine{
		server:  server,
		options: options,
		logger:  logging.OrDefault(options.Logger).WithFields(logging.String("server", options.Name)),
		state:   StatePending,
	}
}

func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Start 执行完整生命周期，直到 Run 返回、ctx 取消或收到 SIGINT/SIGTERM
func (e *Engine) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.logger.Info(ctx, "starting", logging.String("version", e.options.Version))
	e.setState(StateInitializing)
	if err := e.server.LoadConfig(); err != nil {
		e.setState(StateError)
		return fmt.Errorf("load config: %w", err)
	}

	setupCtx, setupCancel := context.WithTimeout(ctx, e.options.StartupTimeout)
	err := e.server.SetupDependencies(setupCtx)
	setupCancel()
	if err != nil {
		e.setState(StateError)
		return fmt.Errorf("setup dependencies: %w", err)
	}
	e.setState(StatePrepared)

	for _, hook := range e.options.BeforeStart {
		if err := hook(ctx); err != nil {
			e.setState(StateError)
			e.shutdown()
			return fmt.Errorf("before start hook: %w", err)
		}
	}

	if err := e.server.StartBackgroundTasks(ctx); err != nil {
		e.setState(StateError)
		e.shutdown()
		return fmt.Errorf("start background tasks: %w", err)
	}

	e.setState(StateRunning)
	errCh := make(chan error, 1)
	go func() { errCh <- e.server.Run(ctx) }()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		e.logger.Info(ctx, "stop requested")
		cancel()
		runErr = <-errCh
	}
	cancel()
	if runErr != nil {
		e.logger.Error(ctx, "run failed", logging.Error(runErr))
	}

	e.setState(StateStopping)
	if err := e.shutdown(); err != nil {
		e.setState(StateError)
		return err
	}
	if runErr != nil {
		e.setState(StateError)
		return fmt.Errorf("run: %w", runErr)
	}
	e.setState(StateStopped)
	e.logger.Info(context.Background(), "stopped")
	return nil
}

func (e *Engine) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.options.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		e.logger.Error(ctx, "shutdown failed", logging.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	for _, hook := range e.options.AfterStop {
		if err := hook(ctx); err != nil {
			e.logger.Warn(ctx, "after stop hook failed", logging.Error(err))
		}
	}
	return nil
}
