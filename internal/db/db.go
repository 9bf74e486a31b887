package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PoolConfig 数据库连接池配置，零值表示使用驱动默认值。
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Options 描述数据库连接参数。
type Options struct {
	Driver string
	// DSN 对 sqlite 而言是文件路径，为空时回退到 sitepress.db。
	DSN    string
	Pool   PoolConfig
	Logger logger.Interface
}

// Models 返回需要自动迁移的全部模型，测试中也复用这份列表。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Keyword{},
		&BlogCategory{},
		&BlogPost{},
		&FeaturedImage{},
		&Page{},
		&RichTextPage{},
		&LinkPage{},
		&ContactMessage{},
		&NewsletterSubscription{},
		&SystemSetting{},
	}
}

// Open 按驱动打开连接但不做迁移。
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(opts.DSN)
		if path == "" {
			path = "sitepress.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	cfg := &gorm.Config{}
	if opts.Logger != nil {
		cfg.Logger = opts.Logger
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	applyPool(sqlDB, opts.Pool)
	return gdb, nil
}

// Init 初始化全局数据库连接并执行自动迁移。
func Init(opts Options) error {
	gdb, err := Open(opts)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Migrate 为全部模型创建或更新表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

func applyPool(sqlDB *sql.DB, pool PoolConfig) {
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
