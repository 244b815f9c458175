package repository

import "time"

// WorkOrderListFilter 查询工单列表的过滤条件
type WorkOrderListFilter struct {
	Page          int
	PageSize      int
	ClientID      string
	Status        string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ClientListFilter 查询客户列表的过滤条件
type ClientListFilter struct {
	Page           int
	PageSize       int
	Search         string
	ApprovalStatus string
}

// InventoryListFilter 查询库存列表的过滤条件
type InventoryListFilter struct {
	Page     int
	PageSize int
	Category string
	Search   string
}

// DeliveryEventListFilter 查询日历事件的过滤条件
type DeliveryEventListFilter struct {
	Page        int
	PageSize    int
	EventType   string
	WorkOrderID string
	StartFrom   *time.Time
	StartTo     *time.Time
}

// AuditLogListFilter 查询审计日志的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	Event       string
	Role        string
	Actor       string
	Entity      string
	EntityID    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceListFilter 查询发票列表的过滤条件
type InvoiceListFilter struct {
	Page        int
	PageSize    int
	Status      string
	WorkOrderID string
}

// ChangeRequestListFilter 查询变更申请的过滤条件
type ChangeRequestListFilter struct {
	Page              int
	PageSize          int
	Status            string
	RequestedByUserID string
}
