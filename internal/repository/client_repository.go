package repository

import (
	"errors"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
)

// ClientRepository 客户数据访问接口
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(id string) (*models.Client, error)
	GetByClientNumber(clientNumber string) (*models.Client, error)
	List(filter ClientListFilter) ([]models.Client, int64, error)
	ListByNameLike(pattern string) ([]models.Client, error)
	Updates(id string, updates map[string]interface{}) error
	SoftDelete(id string) error
	WithTx(tx *gorm.DB) *GormClientRepository
}

// GormClientRepository GORM 实现
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓库
func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClientRepository) WithTx(tx *gorm.DB) *GormClientRepository {
	if tx == nil {
		return r
	}
	return &GormClientRepository{db: tx}
}

// Create 创建客户
func (r *GormClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// GetByID 根据 ID 获取客户
func (r *GormClientRepository) GetByID(id string) (*models.Client, error) {
	var client models.Client
	if err := r.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// GetByClientNumber 根据客户编号获取客户
func (r *GormClientRepository) GetByClientNumber(clientNumber string) (*models.Client, error) {
	var client models.Client
	if err := r.db.Where("client_number = ?", clientNumber).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// List 查询客户列表
func (r *GormClientRepository) List(filter ClientListFilter) ([]models.Client, int64, error) {
	query := r.db.Model(&models.Client{})

	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.Search != "" {
		condition, argCount := buildSearchLikeCondition(r.db, []string{"name", "client_number", "city"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var clients []models.Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// ListByNameLike 按名称模糊匹配客户（重名冲突启发式用）
func (r *GormClientRepository) ListByNameLike(pattern string) ([]models.Client, error) {
	if pattern == "" {
		return nil, nil
	}
	condition, argCount := buildSearchLikeCondition(r.db, []string{"name"})
	var clients []models.Client
	if err := r.db.
		Where(condition, repeatLikeArgs("%"+pattern+"%", argCount)...).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Updates 更新客户字段
func (r *GormClientRepository) Updates(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete 软删除客户
func (r *GormClientRepository) SoftDelete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Client{}).Error
}
