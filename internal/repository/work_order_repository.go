package repository

import (
	"errors"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkOrderRepository 工单数据访问接口
type WorkOrderRepository interface {
	Create(order *models.WorkOrder) error
	GetByID(id string) (*models.WorkOrder, error)
	GetByIDForUpdate(id string) (*models.WorkOrder, error)
	List(filter WorkOrderListFilter) ([]models.WorkOrder, int64, error)
	Updates(id string, updates map[string]interface{}) error
	SoftDelete(id string) error
	WithTx(tx *gorm.DB) *GormWorkOrderRepository
}

// GormWorkOrderRepository GORM 实现
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewWorkOrderRepository 创建工单仓库
func NewWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWorkOrderRepository) WithTx(tx *gorm.DB) *GormWorkOrderRepository {
	if tx == nil {
		return r
	}
	return &GormWorkOrderRepository{db: tx}
}

// Create 创建工单
func (r *GormWorkOrderRepository) Create(order *models.WorkOrder) error {
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取工单
func (r *GormWorkOrderRepository) GetByID(id string) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 在事务内加行锁获取工单（sqlite 单写者下为空操作）
func (r *GormWorkOrderRepository) GetByIDForUpdate(id string) (*models.WorkOrder, error) {
	var order models.WorkOrder
	query := r.db.Where("id = ?", id)
	if dbDialectName(r.db) != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 查询工单列表
func (r *GormWorkOrderRepository) List(filter WorkOrderListFilter) ([]models.WorkOrder, int64, error) {
	query := r.db.Model(&models.WorkOrder{})

	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ScheduledFrom != nil {
		query = query.Where("scheduled_date >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		query = query.Where("scheduled_date <= ?", *filter.ScheduledTo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.WorkOrder
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Updates 更新工单字段
func (r *GormWorkOrderRepository) Updates(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.WorkOrder{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete 软删除工单
func (r *GormWorkOrderRepository) SoftDelete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.WorkOrder{}).Error
}
