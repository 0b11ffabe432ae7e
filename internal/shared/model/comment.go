package model

import "time"

// Comment 提案下的评论
//
// UserName 是作者显示名的非规范化缓存，创建时写入，
// 读取时免去一次用户表查询。用户改名后会过期（当前无改名路径，接受此取舍）。
type Comment struct {
	ID         string    `json:"id" bson:"_id"`
	Text       string    `json:"text" bson:"text"`
	AuthorID   string    `json:"author" bson:"author"`
	UserName   string    `json:"user_name" bson:"user_name"`
	ProposalID int64     `json:"proposal_id" bson:"proposal_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
