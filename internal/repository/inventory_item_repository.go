package repository

import (
	"errors"
	"strings"

	"github.com/firewood-bank/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryItemRepository 库存数据访问接口
type InventoryItemRepository interface {
	Create(item *models.InventoryItem) error
	GetByID(id string) (*models.InventoryItem, error)
	GetByIDForUpdate(id string) (*models.InventoryItem, error)
	FirstMatching(namePatterns, unitPatterns []string) (*models.InventoryItem, error)
	List(filter InventoryListFilter) ([]models.InventoryItem, int64, error)
	Updates(id string, updates map[string]interface{}) error
	SoftDelete(id string) error
	WithTx(tx *gorm.DB) *GormInventoryItemRepository
}

// GormInventoryItemRepository GORM 实现
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewInventoryItemRepository 创建库存仓库
func NewInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryItemRepository) WithTx(tx *gorm.DB) *GormInventoryItemRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryItemRepository{db: tx}
}

// Create 创建库存物料
func (r *GormInventoryItemRepository) Create(item *models.InventoryItem) error {
	return r.db.Create(item).Error
}

// GetByID 根据 ID 获取库存物料
func (r *GormInventoryItemRepository) GetByID(id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDForUpdate 在事务内加行锁获取库存物料
// 可用量校验与写入必须读到同一行的最新值；postgres read-committed 下依赖行锁。
func (r *GormInventoryItemRepository) GetByIDForUpdate(id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := r.db.Where("id = ?", id)
	if dbDialectName(r.db) != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FirstMatching 按名称/单位模式匹配第一条库存记录（按创建时间排序）
func (r *GormInventoryItemRepository) FirstMatching(namePatterns, unitPatterns []string) (*models.InventoryItem, error) {
	likes := make([]interface{}, 0, len(namePatterns)+len(unitPatterns))
	conditions := make([]string, 0, len(namePatterns)+len(unitPatterns))

	nameCondition, _ := buildSearchLikeCondition(r.db, []string{"name"})
	unitCondition, _ := buildSearchLikeCondition(r.db, []string{"unit"})

	for _, p := range namePatterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		conditions = append(conditions, nameCondition)
		likes = append(likes, "%"+trimmed+"%")
	}
	for _, p := range unitPatterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		conditions = append(conditions, unitCondition)
		likes = append(likes, "%"+trimmed+"%")
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	var item models.InventoryItem
	if err := r.db.
		Where(strings.Join(conditions, " OR "), likes...).
		Order("created_at ASC").
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// List 查询库存列表
func (r *GormInventoryItemRepository) List(filter InventoryListFilter) ([]models.InventoryItem, int64, error) {
	query := r.db.Model(&models.InventoryItem{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		condition, argCount := buildSearchLikeCondition(r.db, []string{"name", "category"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.InventoryItem
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Updates 更新库存字段
func (r *GormInventoryItemRepository) Updates(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete 软删除库存物料
func (r *GormInventoryItemRepository) SoftDelete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.InventoryItem{}).Error
}
