package service

import "bca-portal/internal/model"

// Actor 当前操作者，由 Handler 从 JWT 声明构造
type Actor struct {
	UserID    string
	Role      string
	ProfileID string
}

func (a Actor) IsAdmin() bool   { return a.Role == model.RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == model.RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == model.RoleStudent }

// userRef 审计字段使用的操作者 ID
func (a Actor) userRef() *string {
	return model.StrPtr(a.UserID)
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// requireProfile 教师 / 学生必须关联档案
func requireProfile(a Actor, role string) error {
	if a.Role != role {
		return ErrAccessDenied
	}
	if a.ProfileID == "" {
		return ErrNoProfile
	}
	return nil
}
