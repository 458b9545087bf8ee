package service

import (
	"errors"
	"fmt"
	"strings"
)

// ── 错误分类 ──
// 模块错误均包装其中一个分类，调用方可按具体错误或分类匹配

var (
	ErrValidation          = errors.New("参数校验失败")
	ErrAccessDenied        = errors.New("无权访问")
	ErrNotFound            = errors.New("资源不存在")
	ErrDuplicateSubmission = errors.New("重复提交")
	ErrOverpayment         = errors.New("缴费金额超出剩余应缴")
	ErrInvalidState        = errors.New("当前状态不允许该操作")
	ErrConflict            = errors.New("数据已被其他操作修改")
)

var categories = []error{
	ErrValidation,
	ErrAccessDenied,
	ErrNotFound,
	ErrDuplicateSubmission,
	ErrOverpayment,
	ErrInvalidState,
	ErrConflict,
}

// Category 返回 err 所属分类，未分类返回 nil
func Category(err error) error {
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

// Message 去掉分类前缀后的提示文本
func Message(err error) string {
	msg := err.Error()
	if c := Category(err); c != nil {
		if trimmed := strings.TrimPrefix(msg, c.Error()+": "); trimmed != "" {
			return trimmed
		}
	}
	return msg
}

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// ── 通用业务错误 ──

var (
	ErrAdminOnly   = fmt.Errorf("%w: 仅管理员可执行该操作", ErrAccessDenied)
	ErrNoProfile   = fmt.Errorf("%w: 当前账号未关联档案", ErrAccessDenied)
	ErrFutureDate  = fmt.Errorf("%w: 日期不能晚于今天", ErrValidation)
	ErrInvalidDate = fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD", ErrValidation)

	ErrStudentNotFound    = fmt.Errorf("%w: 学生不存在", ErrNotFound)
	ErrTeacherNotFound    = fmt.Errorf("%w: 教师不存在", ErrNotFound)
	ErrSubjectNotFound    = fmt.Errorf("%w: 课程不存在", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: 作业不存在", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: 用户不存在", ErrNotFound)
)
