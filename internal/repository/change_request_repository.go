package repository

import (
	"errors"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
)

// ChangeRequestRepository 变更申请数据访问接口
type ChangeRequestRepository interface {
	Create(request *models.ChangeRequest) error
	GetByID(id string) (*models.ChangeRequest, error)
	List(filter ChangeRequestListFilter) ([]models.ChangeRequest, int64, error)
	Updates(id string, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormChangeRequestRepository
}

// GormChangeRequestRepository GORM 实现
type GormChangeRequestRepository struct {
	db *gorm.DB
}

// NewChangeRequestRepository 创建变更申请仓库
func NewChangeRequestRepository(db *gorm.DB) *GormChangeRequestRepository {
	return &GormChangeRequestRepository{db: db}
}

// WithTx 绑定事务
func (r *GormChangeRequestRepository) WithTx(tx *gorm.DB) *GormChangeRequestRepository {
	if tx == nil {
		return r
	}
	return &GormChangeRequestRepository{db: tx}
}

// Create 创建变更申请
func (r *GormChangeRequestRepository) Create(request *models.ChangeRequest) error {
	return r.db.Create(request).Error
}

// GetByID 根据 ID 获取变更申请
func (r *GormChangeRequestRepository) GetByID(id string) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := r.db.Where("id = ?", id).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List 查询变更申请列表
func (r *GormChangeRequestRepository) List(filter ChangeRequestListFilter) ([]models.ChangeRequest, int64, error) {
	query := r.db.Model(&models.ChangeRequest{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestedByUserID != "" {
		query = query.Where("requested_by_user_id = ?", filter.RequestedByUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.ChangeRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Updates 更新变更申请字段
func (r *GormChangeRequestRepository) Updates(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.ChangeRequest{}).Where("id = ?", id).Updates(updates).Error
}
