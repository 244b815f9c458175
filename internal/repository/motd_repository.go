package repository

import (
	"errors"
	"time"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
)

// MotdRepository 公告数据访问接口
type MotdRepository interface {
	Create(motd *models.Motd) error
	GetByID(id string) (*models.Motd, error)
	List(activeOnly bool, now time.Time) ([]models.Motd, error)
	SoftDelete(id string) error
	WithTx(tx *gorm.DB) *GormMotdRepository
}

// GormMotdRepository GORM 实现
type GormMotdRepository struct {
	db *gorm.DB
}

// NewMotdRepository 创建公告仓库
func NewMotdRepository(db *gorm.DB) *GormMotdRepository {
	return &GormMotdRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMotdRepository) WithTx(tx *gorm.DB) *GormMotdRepository {
	if tx == nil {
		return r
	}
	return &GormMotdRepository{db: tx}
}

// Create 创建公告
func (r *GormMotdRepository) Create(motd *models.Motd) error {
	return r.db.Create(motd).Error
}

// GetByID 根据 ID 获取公告
func (r *GormMotdRepository) GetByID(id string) (*models.Motd, error) {
	var motd models.Motd
	if err := r.db.Where("id = ?", id).First(&motd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &motd, nil
}

// List 查询公告（activeOnly 时仅返回当前生效窗口内的）
func (r *GormMotdRepository) List(activeOnly bool, now time.Time) ([]models.Motd, error) {
	query := r.db.Model(&models.Motd{})
	if activeOnly {
		query = query.
			Where("active_from IS NULL OR active_from <= ?", now).
			Where("active_to IS NULL OR active_to >= ?", now)
	}
	var motds []models.Motd
	if err := query.Order("created_at DESC").Find(&motds).Error; err != nil {
		return nil, err
	}
	return motds, nil
}

// SoftDelete 软删除公告
func (r *GormMotdRepository) SoftDelete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Motd{}).Error
}
