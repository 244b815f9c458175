package service

import "errors"

// 业务错误分类
// 规则类失败会导致所在事务整体回滚，不存在状态与库存的半更新。
var (
	ErrForbidden             = errors.New("forbidden")
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrNoTrackedStock        = errors.New("no tracked stock item")
)
