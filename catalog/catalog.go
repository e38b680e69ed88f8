// Package catalog 装配目录管理的全部用例
//
// Catalog 持有数据库、领域事件中介、消息总线与四个实体的用例服务。提交后的集成事件经
// integration.Publisher 转发到总线，传输由 config.Events.Transport 选择。
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/castmember"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/genre"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/video"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/config"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/migrations"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/integration"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/middleware"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/transport/memory"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/transport/natsjetstream"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/transport/redisstreams"
	synctransport "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/transport/sync"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/patterns/retry"
)

// Catalog 装配结果
type Catalog struct {
	Logger   logging.Logger
	DB       *gorm.DB
	Mediator *mediator.DomainEventMediator
	Bus      *messaging.MessageBus
	Factory  *app.Factory

	Categories  *category.Service
	CastMembers *castmember.Service
	Genres      *genre.Service
	Videos      *video.Service
}

// repositories 四个实体的仓储
type repositories struct {
	categories  category.IRepository
	castMembers castmember.IRepository
	genres      genre.IRepository
	videos      video.IRepository
}

// New 按配置打开数据库、执行迁移并装配 gorm 仓储
func New(ctx context.Context, cfg config.Config, logger logging.Logger) (*Catalog, error) {
	logger = logging.OrDefault(logger)
	db, err := OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	transport, err := NewTransport(cfg.Events, logger)
	if err != nil {
		_ = gormdb.Close(db)
		return nil, err
	}
	m := mediator.New(mediator.WithLogger(logger))
	newFactory := func(opts ...app.Option) *app.Factory {
		return app.NewGormFactory(db, m, append(opts, app.WithLogger(logger))...)
	}
	c := assemble(m, transport, newFactory, repositories{
		categories:  category.NewGormRepository(db, logger),
		castMembers: castmember.NewGormRepository(db, logger),
		genres:      genre.NewGormRepository(db, logger),
		videos:      video.NewGormRepository(db, logger),
	}, logger)
	c.DB = db
	return c, nil
}

// NewInMemory 内存仓储 + 同步传输，用于测试与演示；返回时即可执行用例
func NewInMemory(logger logging.Logger) *Catalog {
	logger = logging.OrDefault(logger)
	m := mediator.New(mediator.WithLogger(logger))
	newFactory := func(opts ...app.Option) *app.Factory {
		return app.NewMemoryFactory(m, append(opts, app.WithLogger(logger))...)
	}
	return assemble(m, synctransport.New(logger), newFactory, repositories{
		categories:  category.NewMemoryRepository(),
		castMembers: castmember.NewMemoryRepository(),
		genres:      genre.NewMemoryRepository(),
		videos:      video.NewMemoryRepository(),
	}, logger)
}

func assemble(m *mediator.DomainEventMediator, transport messaging.ITransport, newFactory func(...app.Option) *app.Factory, repos repositories, logger logging.Logger) *Catalog {
	bus := messaging.NewMessageBus(transport)
	bus.Use(middleware.NewTracingMiddleware())

	var opts []integration.Option
	if st, ok := transport.(*synctransport.Transport); ok {
		// 同步传输返回的是处理器错误，不重试
		opts = append(opts, integration.WithRetry(retry.Config{MaxAttempts: 1}))
		// 无后台资源，装配即启动
		_ = st.Start(context.Background())
	}
	f := newFactory(app.WithCheck(busStarted(bus)))
	publisher := integration.NewPublisher(bus, logger, opts...)
	integration.Bind(m, publisher, category.IntegrationEvents...)
	integration.Bind(m, publisher, video.IntegrationEvents...)

	return &Catalog{
		Logger:      logger,
		Mediator:    m,
		Bus:         bus,
		Factory:     f,
		Categories:  category.NewService(repos.categories, f),
		CastMembers: castmember.NewService(repos.castMembers, f),
		Genres:      genre.NewService(repos.genres, repos.categories, f),
		Videos: video.NewService(repos.videos, video.Relations{
			Categories:  repos.categories,
			Genres:      repos.genres,
			CastMembers: repos.castMembers,
		}, f),
	}
}

// ErrNotStarted 异步传输尚未启动时执行写用例
var ErrNotStarted = errors.New("catalog not started: call Start before running write use cases")

// busStarted 写用例的前置检查：提交后要发布集成事件，总线必须在运行
func busStarted(bus *messaging.MessageBus) app.Check {
	return func(context.Context) error {
		if !bus.Stats().Running {
			return ErrNotStarted
		}
		return nil
	}
}

// Start 订阅编码结果并启动传输（已在运行的同步传输不再启动）
//
// 异步传输下，Start 之前的写用例返回 ErrNotStarted 且不落库。
func (c *Catalog) Start(ctx context.Context) error {
	handler := video.NewEncodingResultHandler(c.Videos, c.Logger)
	if err := c.Bus.Subscribe(ctx, video.AudioMediaEncodedMessage, handler); err != nil {
		return fmt.Errorf("subscribe %s: %w", video.AudioMediaEncodedMessage, err)
	}
	if c.Bus.Stats().Running {
		return nil
	}
	if err := c.Bus.Start(ctx); err != nil {
		return fmt.Errorf("start message bus: %w", err)
	}
	return nil
}

// Close 关闭总线与数据库
func (c *Catalog) Close() error {
	var errs []error
	if c.Bus != nil {
		if err := c.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close message bus: %w", err))
		}
	}
	if c.DB != nil {
		if err := gormdb.Close(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// OpenDatabase 打开数据库；AutoMigrate 时执行嵌入的迁移
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger logging.Logger) (*gorm.DB, error) {
	db, err := gormdb.Open(ctx, gormdb.Options{
		DSN:           cfg.DSN,
		MaxOpenConns:  cfg.MaxOpenConns,
		MaxIdleConns:  cfg.MaxIdleConns,
		SlowThreshold: cfg.SlowThreshold,
		Debug:         cfg.Debug,
	}, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.AutoMigrate {
		return db, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = gormdb.Close(db)
		return nil, fmt.Errorf("sql db: %w", err)
	}
	if err := migrations.Up(ctx, sqlDB); err != nil {
		_ = gormdb.Close(db)
		return nil, err
	}
	return db, nil
}

// NewTransport 按配置构建消息传输
func NewTransport(cfg config.EventsConfig, logger logging.Logger) (messaging.ITransport, error) {
	switch cfg.Transport {
	case config.TransportSync, "":
		return synctransport.New(logger), nil
	case config.TransportMemory:
		return memory.New(memory.Config{QueueSize: cfg.Memory.QueueSize, Workers: cfg.Memory.WorkerCount, Logger: logger}), nil
	case config.TransportRedis:
		t, err := redisstreams.NewTransport(redisstreams.Config{
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			StreamPrefix: cfg.Redis.StreamPrefix,
			GroupName:    cfg.Redis.Group,
			BlockTimeout: cfg.Redis.BlockTimeout,
			MaxLen:       cfg.Redis.MaxLen,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportNATS:
		return natsjetstream.NewTransport(natsjetstream.Config{
			URL:           cfg.NATS.URL,
			Stream:        cfg.NATS.Stream,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			Retention:     cfg.NATS.Retention,
			AckWait:       cfg.NATS.AckWait,
			Logger:        logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Transport)
	}
}
