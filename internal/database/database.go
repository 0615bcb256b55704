// Package database 维护规则库与排班历史所在 PostgreSQL 的连接
//
// 服务允许在数据库缺席时以独立模式运行，本包只负责在数据库
// 可达时建立带连接池的句柄，并对仓储层的读写做慢查询观测。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paiche/paiche/internal/config"
	"github.com/paiche/paiche/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// pingTimeout 建连时的可达性探测超时
const pingTimeout = 5 * time.Second

// slowThreshold 超过该耗时的仓储语句记入慢查询日志
const slowThreshold = 100 * time.Millisecond

// DB 规则库/历史库的连接句柄
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New 建立数据库连接并探测可达性
// 探测失败返回错误，由调用方决定是退出还是降级为独立模式
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库可达性探测失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("规则库连接就绪")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close 关闭连接
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	logger.Info().Msg("关闭规则库连接")
	return db.DB.Close()
}

// Health 健康检查，供 /health 端点探测
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction 在单个事务内执行 fn
// fn 返回错误或发生崩溃时回滚，否则提交
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("事务回滚失败: %v (原始错误: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// Stats 返回连接池统计，供监控端点上报
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext 执行写入语句并观测耗时
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	observe(query, time.Since(start))
	return result, err
}

// QueryContext 执行查询并观测耗时
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	observe(query, time.Since(start))
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

// observe 记录超过阈值的仓储语句
func observe(query string, duration time.Duration) {
	if duration <= slowThreshold {
		return
	}
	logger.Warn().
		Str("query", truncateQuery(query)).
		Dur("duration", duration).
		Msg("仓储慢查询")
}

// truncateQuery 截断长语句，避免日志刷屏
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
