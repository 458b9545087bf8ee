package model

import "time"

// 角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User 登录账号，对应 users
// ProfileID 指向 students.id 或 teachers.id，管理员为空
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	ProfileID    *string    `gorm:"type:uuid"                                      json:"profile_id,omitempty"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// ValidRole 校验角色值
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
