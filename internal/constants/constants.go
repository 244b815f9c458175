package constants

// 用户角色常量
const (
	RoleAdmin     = "admin"
	RoleLead      = "lead"
	RoleStaff     = "staff"
	RoleDriver    = "driver"
	RoleVolunteer = "volunteer"
)

// 工单状态常量
const (
	WorkOrderStatusDraft      = "draft"
	WorkOrderStatusScheduled  = "scheduled"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCancelled  = "cancelled"
	WorkOrderStatusDelivered  = "delivered"
	WorkOrderStatusIssue      = "issue"
)

// 履约方式常量（送柴 / 自提）
const (
	FulfillmentModeDelivery = "delivery"
	FulfillmentModePickup   = "pickup"
)

// 客户审批状态常量
const (
	ApprovalStatusApproved = "approved"
	ApprovalStatusDenied   = "denied"
	ApprovalStatusPending  = "pending"
)

// 日历事件类型常量
const (
	DeliveryEventTypeDelivery = "delivery"
	DeliveryEventTypeMeeting  = "meeting"
	DeliveryEventTypeWorkday  = "workday"
)

// 发票状态常量
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)

// 变更申请状态常量
const (
	ChangeRequestStatusOpen     = "open"
	ChangeRequestStatusInReview = "in_review"
	ChangeRequestStatusApproved = "approved"
	ChangeRequestStatusRejected = "rejected"
)

// 审计事件名常量
const (
	AuditEventCreateWorkOrder     = "create_work_order"
	AuditEventUpdateWorkOrder     = "update_work_order_status"
	AuditEventUpdateAssignees     = "update_work_order_assignees"
	AuditEventCreateClient        = "create_client"
	AuditEventUpdateClient        = "update_client"
	AuditEventDeleteClient        = "delete_client"
	AuditEventCreateInventoryItem = "create_inventory_item"
	AuditEventUpdateInventoryItem = "update_inventory_item"
	AuditEventDeleteInventoryItem = "delete_inventory_item"
	AuditEventCreateInvoice       = "create_invoice_from_work_order"
	AuditEventCreateMotd          = "create_motd"
	AuditEventDeleteMotd          = "delete_motd"
	AuditEventCreateChangeRequest = "create_change_request"
	AuditEventResolveChange       = "resolve_change_request"
	AuditEventLogin               = "login_user"
	AuditEventChangePassword      = "change_password"
	AuditEventResetPassword       = "reset_password"
)

// RedactedPlaceholder 字段遮蔽哨兵值：区分“被脱敏”与“本来为空”
const RedactedPlaceholder = "Hidden"
