package authz

import "github.com/firewood-bank/backend/internal/constants"

// 授权对象
const (
	ObjectWorkOrders     = "work_orders"
	ObjectClients        = "clients"
	ObjectInventory      = "inventory"
	ObjectDeliveryEvents = "delivery_events"
	ObjectInvoices       = "invoices"
	ObjectAuditLogs      = "audit_logs"
	ObjectMotd           = "motd"
	ObjectChangeRequests = "change_requests"
	ObjectUsers          = "users"
)

// 授权动作
const (
	ActionCreate     = "create"
	ActionRead       = "read"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionTransition = "transition"
	ActionAssign     = "assign"
	ActionResolve    = "resolve"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// volunteer 是所有角色的只读基线，司机的状态流转权限另受能力白名单约束
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleVolunteer,
			Policies: []Policy{
				{Object: ObjectWorkOrders, Action: ActionRead},
				{Object: ObjectDeliveryEvents, Action: ActionRead},
				{Object: ObjectMotd, Action: ActionRead},
				{Object: ObjectChangeRequests, Action: ActionCreate},
				{Object: ObjectChangeRequests, Action: ActionRead},
			},
		},
		{
			Role:     constants.RoleDriver,
			Inherits: []string{constants.RoleVolunteer},
			Policies: []Policy{
				{Object: ObjectWorkOrders, Action: ActionTransition},
				{Object: ObjectClients, Action: ActionRead},
			},
		},
		{
			Role:     constants.RoleStaff,
			Inherits: []string{constants.RoleVolunteer},
			Policies: []Policy{
				{Object: ObjectWorkOrders, Action: ActionCreate},
				{Object: ObjectWorkOrders, Action: ActionUpdate},
				{Object: ObjectWorkOrders, Action: ActionTransition},
				{Object: ObjectClients, Action: "*"},
				{Object: ObjectInventory, Action: ActionRead},
				{Object: ObjectInventory, Action: ActionCreate},
				{Object: ObjectInventory, Action: ActionUpdate},
				{Object: ObjectInvoices, Action: ActionCreate},
				{Object: ObjectInvoices, Action: ActionRead},
				{Object: ObjectInvoices, Action: ActionUpdate},
				{Object: ObjectUsers, Action: ActionRead},
			},
		},
		{
			Role:     constants.RoleLead,
			Inherits: []string{constants.RoleStaff},
			Policies: []Policy{
				{Object: ObjectWorkOrders, Action: ActionAssign},
				{Object: ObjectInventory, Action: "*"},
				{Object: ObjectDeliveryEvents, Action: "*"},
				{Object: ObjectAuditLogs, Action: ActionRead},
				{Object: ObjectChangeRequests, Action: ActionResolve},
			},
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "*", Action: "*"},
			},
		},
	}
}
