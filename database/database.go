package database

import (
	"fmt"
	"log"

	"ahorra/config"
	"ahorra/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
// 根据配置选择驱动：服务器部署使用 MySQL，嵌入式/本地部署使用 sqlite 文件。
// 业务层只依赖 *gorm.DB，驱动差异止步于此。
func Init(cfg *config.Config) error {
	dialector, err := openDialector(&cfg.Database)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数（sqlite 下单连接即可，保持与 MySQL 一致的上限无副作用）
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Budget{},
		&models.Notification{},
	); err != nil {
		return err
	}

	log.Println("数据库初始化成功")
	return nil
}

// openDialector 根据驱动配置构建 gorm Dialector
func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = "ahorra.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
