package model

import (
	"strings"
	"time"
)

// ProposalCategory 提案类别（固定枚举）
type ProposalCategory string

const (
	CategoryInfrastructure ProposalCategory = "Infrastructure"
	CategoryHealthcare     ProposalCategory = "Healthcare"
	CategoryEducation      ProposalCategory = "Education"
	CategoryEconomy        ProposalCategory = "Economy"
)

// ValidCategory 校验类别是否在枚举内
func ValidCategory(c ProposalCategory) bool {
	switch c {
	case CategoryInfrastructure, CategoryHealthcare, CategoryEducation, CategoryEconomy:
		return true
	}
	return false
}

// ProposalStatus 提案状态
type ProposalStatus string

const (
	StatusNew          ProposalStatus = "New"
	StatusUnderReview  ProposalStatus = "Under Review"
	StatusTrending     ProposalStatus = "Trending"
	StatusConsolidated ProposalStatus = "Merged/Consolidated"
)

// ValidStatus 校验状态是否在枚举内
func ValidStatus(s ProposalStatus) bool {
	switch s {
	case StatusNew, StatusUnderReview, StatusTrending, StatusConsolidated:
		return true
	}
	return false
}

// ConsolidatedPrefix 合并后提案标题前缀
const ConsolidatedPrefix = "[Consolidated] "

// ConsolidatedTitle 为标题加合并前缀，已带前缀则原样返回（幂等）
func ConsolidatedTitle(title string) string {
	// 前缀判断不含尾部空格，"[Consolidated]x" 这类标题也视为已带前缀
	if strings.HasPrefix(title, strings.TrimRight(ConsolidatedPrefix, " ")) {
		return title
	}
	return ConsolidatedPrefix + title
}

// Proposal 市民提案
//
// ID 为创建时刻的 Unix 毫秒时间戳（时间递增、全局唯一索引），
// 对人无语义，仅作主键。Votes 从 1 起（作者的隐含一票）。
type Proposal struct {
	ID        int64            `json:"id" bson:"_id"`
	Title     string           `json:"title" bson:"title"`
	Category  ProposalCategory `json:"category" bson:"category"`
	Desc      string           `json:"desc" bson:"desc"`
	Votes     int              `json:"votes" bson:"votes"`
	Status    ProposalStatus   `json:"status" bson:"status"`
	AuthorID  string           `json:"author" bson:"author"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`

	// CommentCount 列表接口通过聚合查询附带的评论数，不落库
	CommentCount int `json:"comment_count" bson:"comment_count,omitempty"`
}
