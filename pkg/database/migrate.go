package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtyMigration 上次迁移中途失败，需人工修复后 force 到正确版本
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

// LatestVersion 内嵌迁移文件中的最高版本号
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("迁移目录为空: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("读取迁移文件失败: %w", err)
		}
		version = next
	}
}

// RunMigrations 将数据库升级到内嵌的最新版本
// dirty 状态直接报错；数据库版本高于内嵌版本时（回滚部署）只告警不执行
// 迁移实例不关闭：postgres 驱动的 Close 会连带关闭共享的 *sql.DB
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	latest, err := LatestVersion()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return fmt.Errorf("读取迁移版本失败: %w", err)
	case dirty:
		return fmt.Errorf("%w: version %d", ErrDirtyMigration, current)
	}

	switch {
	case current > latest:
		logger.Warn("数据库版本高于程序内置迁移，跳过",
			zap.Uint("db_version", current), zap.Uint("latest", latest))
		return nil
	case current == latest:
		logger.Info("数据库已是最新版本", zap.Uint("version", current))
		return nil
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	logger.Info("数据库迁移完成", zap.Uint("from", current), zap.Uint("to", latest))
	return nil
}
