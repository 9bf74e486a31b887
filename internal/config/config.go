package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/mail"
	"github.com/sitepress/internal/storage"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的配置。
// 顶层键与历史环境变量同名（PORT、SESSION_SECRET、GIN_MODE 等），嵌套键使用下划线形式（DATABASE_DRIVER）。
type AppConfig struct {
	ListenAddr        string `mapstructure:"listen_addr"`
	Port              string `mapstructure:"port"`
	SessionSecret     string `mapstructure:"session_secret"`
	GinMode           string `mapstructure:"gin_mode"`
	SiteBaseURL       string `mapstructure:"site_base_url"`
	SuperRootUserName string `mapstructure:"super_root_user_name"`
	SuperRootPassword string `mapstructure:"super_root_password"`
	// TemplateGlob 为空时不加载 HTML 模板，仅提供 JSON 接口
	TemplateGlob string `mapstructure:"template_glob"`
	StaticDir    string `mapstructure:"static_dir"`

	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Email    EmailConfig    `mapstructure:"email"`
	Ownable  OwnableConfig  `mapstructure:"ownable"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string     `mapstructure:"driver"` // sqlite / postgres
	DSN    string     `mapstructure:"dsn"`
	Pool   PoolConfig `mapstructure:"pool"`
}

// PoolConfig 数据库连接池配置
type PoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
}

// StorageConfig 资源存储配置
type StorageConfig struct {
	Driver string       `mapstructure:"driver"` // local / s3
	Local  LocalStorage `mapstructure:"local"`
	S3     S3Storage    `mapstructure:"s3"`
}

type LocalStorage struct {
	BaseDir   string `mapstructure:"base_dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

type S3Storage struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	Prefix          string `mapstructure:"prefix"`
}

// EmailConfig SMTP 配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// OwnableConfig 所有权相关配置
type OwnableConfig struct {
	// AllEditable 列出所有管理员都可编辑的模型，如 blog.blogpost
	AllEditable []string `mapstructure:"all_editable"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load 读取可选的 config.yml，再以环境变量覆盖，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./etc")
	return load(v)
}

func load(v *viper.Viper) (AppConfig, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容旧的环境变量名
	_ = v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_PATH")
	_ = v.BindEnv("storage.local.base_dir", "STORAGE_LOCAL_BASE_DIR", "UPLOAD_DIR")
	_ = v.BindEnv("storage.local.url_prefix", "STORAGE_LOCAL_URL_PREFIX", "UPLOAD_URL_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", "")
	v.SetDefault("port", "8080")
	v.SetDefault("session_secret", "sitepress-dev-secret")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("site_base_url", "http://localhost:8080")
	v.SetDefault("super_root_user_name", "")
	v.SetDefault("super_root_password", "")
	v.SetDefault("template_glob", "web/template/public/*.html")
	v.SetDefault("static_dir", "web/static")

	v.SetDefault("database.driver", db.DriverSQLite)
	v.SetDefault("database.dsn", "sitepress.db")
	v.SetDefault("database.pool.max_open_conns", 0)
	v.SetDefault("database.pool.max_idle_conns", 0)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)

	v.SetDefault("storage.driver", storage.DriverLocal)
	v.SetDefault("storage.local.base_dir", "web/static/uploads")
	v.SetDefault("storage.local.url_prefix", "/static/uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("storage.s3.public_base_url", "")
	v.SetDefault("storage.s3.prefix", "")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)

	v.SetDefault("ownable.all_editable", []string{})

	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "sitepress.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", false)
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		c.SessionSecret = "sitepress-dev-secret"
	}
	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	c.SuperRootUserName = strings.TrimSpace(c.SuperRootUserName)
	c.SuperRootPassword = strings.TrimSpace(c.SuperRootPassword)

	editable := c.Ownable.AllEditable[:0]
	for _, model := range c.Ownable.AllEditable {
		if trimmed := strings.ToLower(strings.TrimSpace(model)); trimmed != "" {
			editable = append(editable, trimmed)
		}
	}
	c.Ownable.AllEditable = editable
}

// DatabaseOptions 转换为 db 包的连接参数
func (c AppConfig) DatabaseOptions() db.Options {
	return db.Options{
		Driver: c.Database.Driver,
		DSN:    c.Database.DSN,
		Pool: db.PoolConfig{
			MaxOpenConns:    c.Database.Pool.MaxOpenConns,
			MaxIdleConns:    c.Database.Pool.MaxIdleConns,
			ConnMaxLifetime: time.Duration(c.Database.Pool.ConnMaxLifetimeSeconds) * time.Second,
		},
	}
}

// StorageConfig 转换为 storage 包的配置
func (c AppConfig) StorageConfig() storage.Config {
	return storage.Config{
		Driver: c.Storage.Driver,
		Local: storage.LocalConfig{
			BaseDir:   c.Storage.Local.BaseDir,
			URLPrefix: c.Storage.Local.URLPrefix,
		},
		S3: storage.S3Config{
			Region:          c.Storage.S3.Region,
			Bucket:          c.Storage.S3.Bucket,
			AccessKeyID:     c.Storage.S3.AccessKeyID,
			SecretAccessKey: c.Storage.S3.SecretAccessKey,
			Endpoint:        c.Storage.S3.Endpoint,
			UsePathStyle:    c.Storage.S3.UsePathStyle,
			PublicBaseURL:   c.Storage.S3.PublicBaseURL,
			Prefix:          c.Storage.S3.Prefix,
		},
	}
}

// MailConfig 转换为 mail 包的配置
func (c AppConfig) MailConfig() mail.Config {
	return mail.Config{
		Enabled:  c.Email.Enabled,
		Host:     c.Email.Host,
		Port:     c.Email.Port,
		Username: c.Email.Username,
		Password: c.Email.Password,
		From:     c.Email.From,
		FromName: c.Email.FromName,
		UseTLS:   c.Email.UseTLS,
		UseSSL:   c.Email.UseSSL,
	}
}

// LoggerOptions 转换为 logger 配置
func (c AppConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Log.Dir,
		Filename:   c.Log.Filename,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}
