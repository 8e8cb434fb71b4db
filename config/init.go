package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	config = defaultConfig()
	mu     sync.RWMutex
)

// defaultConfig 未调用 Init 时（例如单元测试）使用的默认配置
func defaultConfig() *Config {
	return &Config{
		Host:   "0.0.0.0",
		Port:   "8080",
		Prefix: "api",
		Mode:   ModeDebug,
		Database: Database{
			Driver:     "mysql",
			SQLitePath: "social-event.db",
		},
		Redis: Redis{Host: "127.0.0.1", Port: "6379"},
		JWT: JWT{
			AccessSecret: "social-event-dev-secret",
			AccessExpire: 7 * 24 * 3600,
		},
		Log: Log{Level: "info", MaxSize: 100, MaxBackups: 7, MaxAge: 30},
		Bus: Bus{Driver: "redis", Queue: "social-event:notifications", Prefetch: 10},
		Push: Push{Endpoint: "https://fcm.googleapis.com/fcm/send"},
		Schedule: Schedule{
			SweepInterval:    10 * time.Minute,
			ReminderInterval: time.Hour,
			ReminderWindow:   24 * time.Hour,
		},
	}
}

// Init 读取配置：.env -> config.yaml -> 环境变量覆盖
func Init() {
	_ = godotenv.Load()

	cfg := defaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，缺失时完全依赖环境变量
		fmt.Printf("读取配置文件失败，使用默认配置: %v\n", err)
	} else if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Errorf("解析配置文件失败: %w", err))
	}

	if err := envconfig.Process("", cfg); err != nil {
		panic(fmt.Errorf("解析环境变量失败: %w", err))
	}

	Set(cfg)
}

// Get 获取全局配置
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return config
}

// Set 替换全局配置，测试中也会用到
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
}
