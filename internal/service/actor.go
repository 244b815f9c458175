package service

import (
	"strings"

	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
)

// ActorContext 操作者上下文
// 每次调用由认证层构造并显式传入，业务层不读取任何全局会话。
type ActorContext struct {
	UserID         string
	Username       string
	Role           string
	HipaaCertified bool
	DriverCapable  bool
}

// NewActorFromUser 从用户记录构造操作者上下文
func NewActorFromUser(user *models.User) ActorContext {
	if user == nil {
		return ActorContext{}
	}
	return ActorContext{
		UserID:         user.ID,
		Username:       user.Username,
		Role:           user.Role,
		HipaaCertified: user.HipaaCertified,
		DriverCapable:  user.IsDriver || user.Role == constants.RoleDriver,
	}
}

// IsAdmin 是否管理员
func (a ActorContext) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// CanViewProtected 是否可见受保护客户信息（admin 或持证 lead）
func (a ActorContext) CanViewProtected() bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == constants.RoleLead && a.HipaaCertified
}

// FieldViewRestricted 是否需要按指派关系过滤结果集（司机与志愿者）
func (a ActorContext) FieldViewRestricted() bool {
	return a.DriverCapable || a.Role == constants.RoleVolunteer || a.Role == constants.RoleDriver
}

// MatchesUsername 用户名匹配（大小写不敏感）
func (a ActorContext) MatchesUsername(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(a.Username))
}
