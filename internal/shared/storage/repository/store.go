// Package repository 数据库无关的 SQL 存储层
//
// 通过 dbutil.Dialect 接口屏蔽 PostgreSQL 与 SQLite 的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
//
// 与 mongostore 不同，合并与级联删除在这里是真事务：
// ConsolidateProposals / DeleteProposalCascade 的多步写要么全部提交要么全部回滚。
package repository

import (
	"database/sql"
	"strings"

	"civic-portal/internal/shared/storage"
	"civic-portal/internal/shared/storage/dbutil"
)

// Store 通用 SQL 存储实现
// 实现了 storage.Store 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// wrapError 将驱动错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	// 唯一约束冲突：pgx 返回 SQLSTATE 23505，modernc/sqlite 返回
	// "UNIQUE constraint failed"，按错误文本兜底识别
	msg := err.Error()
	if strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") {
		return storage.ErrDuplicate
	}
	return err
}
