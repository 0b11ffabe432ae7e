// Package storage 定义存储层抽象接口和领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 各驱动实现（mongostore/repository）负责将底层错误转换为这些领域错误。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows / mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（重复 email 或重复提案 ID）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrInvalidCategory 提案类别不在枚举内（存储层兜底校验）
	ErrInvalidCategory = errors.New("invalid proposal category")
)
