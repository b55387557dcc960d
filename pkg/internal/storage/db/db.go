// Package db 提供资源树元数据的 GORM 客户端.
// 方言通过工厂注册（mysql/postgres/sqlite），按配置选择.
package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/drivevault/pkg/configs"
	nlog "github.com/yeisme/drivevault/pkg/log"
)

// DialectorFactory 由 DSN 构造 gorm.Dialector.
type DialectorFactory func(dsn string) gorm.Dialector

var dialectorFactories = map[configs.DBType]DialectorFactory{}

// RegisterDialectorFactory 注册方言工厂，各方言文件在 init 中调用.
func RegisterDialectorFactory(dbType configs.DBType, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
}

// GetRegisteredDBTypes 返回已注册的数据库类型.
func GetRegisteredDBTypes() []configs.DBType {
	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	return types
}

// Client 包装 gorm.DB.
type Client struct {
	*gorm.DB
}

// New 按配置建立数据库连接，配置连接池并验证连通性.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().DB

	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for database type: %s", cfg.Type)
	}

	factory, ok := dialectorFactories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	gormLogger := logger.New(
		nlog.Logger(),
		logger.Config{
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	gdb, err := gorm.Open(factory(dsn), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	client := &Client{DB: gdb}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.registerGORMMetrics(cfg.Database); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("数据库连接成功")

	return client, nil
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

const gormMetricsRefreshSeconds = 15

// registerGORMMetrics 挂载 GORM 的 prometheus 插件，不另起服务器.
func (c *Client) registerGORMMetrics(dbName string) error {
	err := c.Use(gormPrometheus.New(gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: gormMetricsRefreshSeconds,
		StartServer:     false,
	}))
	if err != nil {
		return fmt.Errorf("register GORM prometheus plugin: %w", err)
	}

	return nil
}
