package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrRecordExists 唯一约束命中：记录已存在
var ErrRecordExists = errors.New("记录已存在")
