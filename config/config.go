package config

import "time"

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Domain   string `envconfig:"DOMAIN"`
	Prefix   string `envconfig:"PREFIX"`
	Mode     Mode   `envconfig:"MODE"`
	Database Database
	Mysql    Mysql
	Postgres Postgres
	Redis    Redis
	JWT      JWT
	Log      Log    `mapstructure:"Log"`
	Sentry   Sentry `mapstructure:"Sentry"`
	S3       S3
	Bus      Bus
	Push     Push
	Schedule Schedule
}

// Database 选择数据库驱动：mysql / postgres / sqlite
type Database struct {
	Driver string `envconfig:"DRIVER" mapstructure:"driver"`
	// SQLitePath 仅 sqlite 驱动使用，本地开发用
	SQLitePath string `envconfig:"SQLITE_PATH" mapstructure:"sqlite_path"`
}

type Mysql struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
}

type Postgres struct {
	DSN string `envconfig:"DSN" mapstructure:"dsn"`
}

type Redis struct {
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     string `yaml:"port" envconfig:"PORT"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET" mapstructure:"access_secret"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE" mapstructure:"access_expire"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string  `envconfig:"DSN" mapstructure:"dsn"`
	Environment string  `envconfig:"ENVIRONMENT" mapstructure:"environment"`
	SampleRate  float64 `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"` // 性能追踪采样率
	Tracing     SentryTracing
}

type SentryTracing struct {
	DBSlowThresholdMs    int  `mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int  `mapstructure:"redis_slow_threshold_ms"`
	TraceHTTPCalls       bool `mapstructure:"trace_http_calls"`
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint" envconfig:"ENDPOINT"`
	BaseURL         string `mapstructure:"base_url" envconfig:"BASE_URL"`
	Bucket          string `mapstructure:"bucket" envconfig:"BUCKET"`
	Region          string `mapstructure:"region" envconfig:"REGION"`
	AccessKey       string `mapstructure:"access_key" envconfig:"ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"secret_key" envconfig:"SECRET_KEY"`
	Prefix          string `mapstructure:"prefix" envconfig:"PREFIX"`
	UsePathStyle    bool   `mapstructure:"path_style" envconfig:"PATH_STYLE"`
}

// Bus 通知消息总线：redis / rabbitmq / none
type Bus struct {
	Driver   string `envconfig:"DRIVER" mapstructure:"driver"`
	Queue    string `envconfig:"QUEUE" mapstructure:"queue"`
	URL      string `envconfig:"URL" mapstructure:"url"` // rabbitmq 连接串
	Prefetch int    `envconfig:"PREFETCH" mapstructure:"prefetch"`
}

type Push struct {
	FCMServerKey string `envconfig:"FCM_SERVER_KEY" mapstructure:"fcm_server_key"`
	Endpoint     string `envconfig:"ENDPOINT" mapstructure:"endpoint"`
}

type Schedule struct {
	SweepInterval    time.Duration `envconfig:"SWEEP_INTERVAL" mapstructure:"sweep_interval"`
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" mapstructure:"reminder_interval"`
	ReminderWindow   time.Duration `envconfig:"REMINDER_WINDOW" mapstructure:"reminder_window"`
}
