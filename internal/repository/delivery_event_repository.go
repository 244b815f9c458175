package repository

import (
	"errors"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
)

// DeliveryEventRepository 日历事件数据访问接口
type DeliveryEventRepository interface {
	Create(event *models.DeliveryEvent) error
	GetByID(id string) (*models.DeliveryEvent, error)
	GetByWorkOrderID(workOrderID string) (*models.DeliveryEvent, error)
	List(filter DeliveryEventListFilter) ([]models.DeliveryEvent, int64, error)
	Updates(id string, updates map[string]interface{}) error
	SoftDelete(id string) error
	WithTx(tx *gorm.DB) *GormDeliveryEventRepository
}

// GormDeliveryEventRepository GORM 实现
type GormDeliveryEventRepository struct {
	db *gorm.DB
}

// NewDeliveryEventRepository 创建日历事件仓库
func NewDeliveryEventRepository(db *gorm.DB) *GormDeliveryEventRepository {
	return &GormDeliveryEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryEventRepository) WithTx(tx *gorm.DB) *GormDeliveryEventRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryEventRepository{db: tx}
}

// Create 创建日历事件
func (r *GormDeliveryEventRepository) Create(event *models.DeliveryEvent) error {
	return r.db.Create(event).Error
}

// GetByID 根据 ID 获取日历事件
func (r *GormDeliveryEventRepository) GetByID(id string) (*models.DeliveryEvent, error) {
	var event models.DeliveryEvent
	if err := r.db.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// GetByWorkOrderID 获取工单关联的日历事件
func (r *GormDeliveryEventRepository) GetByWorkOrderID(workOrderID string) (*models.DeliveryEvent, error) {
	if workOrderID == "" {
		return nil, nil
	}
	var event models.DeliveryEvent
	if err := r.db.Where("work_order_id = ?", workOrderID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// List 查询日历事件列表
func (r *GormDeliveryEventRepository) List(filter DeliveryEventListFilter) ([]models.DeliveryEvent, int64, error) {
	query := r.db.Model(&models.DeliveryEvent{})

	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.WorkOrderID != "" {
		query = query.Where("work_order_id = ?", filter.WorkOrderID)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_date <= ?", *filter.StartTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var events []models.DeliveryEvent
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Updates 更新日历事件字段
func (r *GormDeliveryEventRepository) Updates(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.DeliveryEvent{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete 软删除日历事件
func (r *GormDeliveryEventRepository) SoftDelete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.DeliveryEvent{}).Error
}
