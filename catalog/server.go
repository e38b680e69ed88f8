package catalog

import (
	"context"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/config"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/server"
)

// Server 以 server.Engine 驱动的常驻进程：消费编码结果并转发集成事件
type Server struct {
	configPath string
	cfg        config.Config
	logger     logging.Logger
	catalog    *Catalog
}

var _ server.IServer = (*Server)(nil)

// NewServer configPath 为空时只使用默认值与环境变量
func NewServer(configPath string) *Server {
	return &Server{configPath: configPath}
}

func (s *Server) Name() string { return "catalog-admin" }

// Catalog 装配完成后可用
func (s *Server) Catalog() *Catalog { return s.catalog }

func (s *Server) LoadConfig() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.SetLogger(s.logger)
	return nil
}

func (s *Server) SetupDependencies(ctx context.Context) error {
	c, err := New(ctx, s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.catalog = c
	return nil
}

func (s *Server) StartBackgroundTasks(ctx context.Context) error {
	if err := s.catalog.Start(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "message bus started", logging.String("transport", s.cfg.Events.Transport))
	return nil
}

// Run 阻塞到 ctx 取消
func (s *Server) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}
