package database

import (
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rehiy/goform-simulator/models"
)

var (
	db *gorm.DB
	mu sync.Mutex
)

// MemoryDSN 命名的共享内存库，进程退出即丢弃
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return db
}

// Close 关闭数据库连接
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	db = nil
	return sqlDB.Close()
}

// InitDB 打开数据库并建表，重复调用会先关闭旧连接
func InitDB(dsn string) error {
	if err := Close(); err != nil {
		return fmt.Errorf("failed to close previous database: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// 内存库只在连接存活期间存在
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	db = conn
	if err := createTables(); err != nil {
		return err
	}
	return nil
}

// createTables 创建数据表
func createTables() error {
	err := db.AutoMigrate(
		&models.SMS{},
		&models.Webhook{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := InitDefaultSettings(); err != nil {
		return fmt.Errorf("failed to init default settings: %w", err)
	}
	return nil
}
