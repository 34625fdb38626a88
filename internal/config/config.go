package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Donation DonationConfig `mapstructure:"donation"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	Env       string `mapstructure:"env"`        // development / production
	StaticDir string `mapstructure:"static_dir"` // 前台静态站点目录，可为空
	AdminDir  string `mapstructure:"admin_dir"`  // 后台静态页面目录，可为空
}

// IsProduction 是否生产环境
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN gorm postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL golang-migrate 使用的连接地址
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RazorpayConfig 支付网关配置
type RazorpayConfig struct {
	KeyID         string `mapstructure:"key_id"`         // 公开的 key id，返回给前端 checkout
	KeySecret     string `mapstructure:"key_secret"`     // 下单及支付签名校验
	WebhookSecret string `mapstructure:"webhook_secret"` // webhook 签名校验
}

// AuthConfig 管理员会话配置
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// DonationConfig 捐赠策略
type DonationConfig struct {
	MinAmount     int64  `mapstructure:"min_amount"`
	MaxAmount     int64  `mapstructure:"max_amount"`
	Currency      string `mapstructure:"currency"`
	ReceiptPrefix string `mapstructure:"receipt_prefix"`
	Timezone      string `mapstructure:"timezone"`
	NodeID        int64  `mapstructure:"node_id"` // snowflake 节点号
}

// Location 统计分组使用的时区
func (d DonationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		logger.Warn("Unknown timezone %q, falling back to UTC: %v", d.Timezone, err)
		return time.UTC
	}
	return loc
}

type SMTPConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Pass            string `mapstructure:"pass"`
	Secure          bool   `mapstructure:"secure"`
	From            string `mapstructure:"from"`
	OrgContactEmail string `mapstructure:"org_contact_email"`
	OrgName         string `mapstructure:"org_name"`
}

// Enabled SMTP 是否完整配置
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.User != "" && s.Pass != ""
}

type NotifyConfig struct {
	PoolSize    int `mapstructure:"pool_size"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

type TaskConfig struct {
	Interval             int `mapstructure:"interval"` // 秒
	WebhookRetentionDays int `mapstructure:"webhook_retention_days"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.admin_dir", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "donations")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")
	v.SetDefault("razorpay.webhook_secret", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("donation.min_amount", 10)
	v.SetDefault("donation.max_amount", 1000000)
	v.SetDefault("donation.currency", "INR")
	v.SetDefault("donation.receipt_prefix", "SRTK")
	v.SetDefault("donation.timezone", "Asia/Kolkata")
	v.SetDefault("donation.node_id", 1)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.secure", false)
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.org_contact_email", "info@bhaktasammilan.org")
	v.SetDefault("smtp.org_name", "Bhakta Sammilan")
	v.SetDefault("notify.pool_size", 4)
	v.SetDefault("notify.max_attempts", 3)
	v.SetDefault("task.interval", 300)
	v.SetDefault("task.webhook_retention_days", 90)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// New 构建 viper 实例：配置文件 + 环境变量（server.port -> SERVER_PORT）
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/donations")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Decode 将 viper 内容解析为 Config
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &config, nil
}

// Load 加载配置
func Load() *Config {
	// .env 仅用于本地开发，缺失时忽略
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}

	v := New()
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Could not read config file, using defaults and env: %v", err)
	}

	config, err := Decode(v)
	if err != nil {
		logger.Fatal("%v", err)
	}

	return config
}
