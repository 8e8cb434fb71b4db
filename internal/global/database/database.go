package database

import (
	"fmt"

	"social-event-system/config"
	"social-event-system/internal/global/sentry/tracing"
	"social-event-system/internal/model"
	"social-event-system/tools"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// autoMigrateModels 定义需要自动迁移的模型列表
var autoMigrateModels = []any{
	&model.User{},
	&model.Category{},
	&model.Event{},
	&model.Participation{},
	&model.Review{},
	&model.Follow{},
	&model.Notification{},
	&model.NotificationPreference{},
	&model.DeviceToken{},
	// 在这里添加其他模型
}

func Init() {
	cfg := config.Get()

	gormLogger := logger.Discard
	if cfg.Mode == config.ModeDebug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := Open(dialector(cfg), gormLogger)
	tools.PanicOnErr(err)

	if tracing.IsEnabled() {
		tools.PanicOnErr(db.Use(tracing.NewGormTracingPlugin()))
	}
	tools.PanicOnErr(Migrate(db))
	DB = db
}

// Open 统一的 gorm 配置：单数表名，驱动错误翻译为 gorm.ErrDuplicatedKey 等
func Open(d gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	return gorm.Open(d, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		TranslateError: true,
		Logger:         l,
	})
}

// Migrate 建表并写入默认分类，测试库同样走这里
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(autoMigrateModels...); err != nil {
		return err
	}
	return model.EnsureDefaultCategory(db)
}

func dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.Open(cfg.Postgres.DSN)
	case "sqlite":
		return sqlite.Open(cfg.Database.SQLitePath)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.Mysql.Username,
			cfg.Mysql.Password,
			cfg.Mysql.Host,
			cfg.Mysql.Port,
			cfg.Mysql.DBName,
		)
		return mysql.Open(dsn)
	}
}
