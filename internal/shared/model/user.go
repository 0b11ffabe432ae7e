package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleCitizen UserRole = "citizen"
	UserRoleMP      UserRole = "mp"
	UserRoleAdmin   UserRole = "admin"
)

// ValidRole 校验角色是否合法
func ValidRole(r UserRole) bool {
	switch r {
	case UserRoleCitizen, UserRoleMP, UserRoleAdmin:
		return true
	}
	return false
}

// User 用户
//
// Email 全局唯一（存储层唯一索引保证）。
// 密码只保存 bcrypt 哈希，JSON 序列化时永不输出。
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// PublicUser 登录响应中暴露的用户信息子集
type PublicUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// Public 返回可安全返回给客户端的用户视图
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
