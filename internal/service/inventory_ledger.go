package service

import (
	"fmt"

	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// reservingStatuses 占用库存的工单状态集合
var reservingStatuses = map[string]bool{
	constants.WorkOrderStatusScheduled:  true,
	constants.WorkOrderStatusInProgress: true,
}

// InventoryLedger 库存台账
// 唯一允许修改 reserved_quantity 的组件；所有读写都在调用方事务内完成。
type InventoryLedger struct {
	itemRepo     repository.InventoryItemRepository
	namePatterns []string
	unitPatterns []string
}

// NewInventoryLedger 创建库存台账
func NewInventoryLedger(itemRepo repository.InventoryItemRepository, namePatterns, unitPatterns []string) *InventoryLedger {
	return &InventoryLedger{
		itemRepo:     itemRepo,
		namePatterns: namePatterns,
		unitPatterns: unitPatterns,
	}
}

// ResolveTrackedItem 按名称/单位模式解析被跟踪的柴火库存记录
// 解析结果在工单创建时固化为 tracked_item_id，后续流转不再重新解析。
func (l *InventoryLedger) ResolveTrackedItem() (*models.InventoryItem, error) {
	item, err := l.itemRepo.FirstMatching(l.namePatterns, l.unitPatterns)
	if err != nil {
		return nil, fmt.Errorf("resolve tracked stock failed: %w", err)
	}
	if item == nil {
		return nil, ErrNoTrackedStock
	}
	return item, nil
}

// AdjustForTransition 按状态流转调整库存
// 进入占用状态时预留，离开时释放；目标为 completed 时额外扣减在库量。
// 流转前后状态相同为空操作。校验失败返回错误，由调用方回滚整个事务。
func (l *InventoryLedger) AdjustForTransition(tx *gorm.DB, itemID, prev, next string, qty models.Quantity) error {
	if prev == next {
		return nil
	}
	if qty.Decimal.Sign() <= 0 {
		return nil
	}
	if itemID == "" {
		return ErrNoTrackedStock
	}

	repo := l.itemRepo.WithTx(tx)
	item, err := repo.GetByIDForUpdate(itemID)
	if err != nil {
		return fmt.Errorf("load tracked stock failed: %w", err)
	}
	if item == nil {
		return ErrNoTrackedStock
	}

	onHand := item.QuantityOnHand.Decimal
	reserved := item.ReservedQuantity.Decimal
	amount := qty.Decimal

	wasReserving := reservingStatuses[prev]
	willReserve := reservingStatuses[next]

	if !wasReserving && willReserve {
		available := onHand.Sub(reserved)
		if available.LessThan(amount) {
			return fmt.Errorf("%w: need %s, available %s of %q", ErrInsufficientInventory, amount.String(), available.String(), item.Name)
		}
		reserved = reserved.Add(amount)
	}
	if wasReserving && !willReserve {
		reserved = reserved.Sub(amount)
	}
	if next == constants.WorkOrderStatusCompleted {
		onHand = onHand.Sub(amount)
	}

	// 不变量成立时不可达，仅作为最后防线
	if reserved.IsNegative() {
		reserved = decimal.Zero
	}
	if onHand.IsNegative() {
		onHand = decimal.Zero
	}

	updates := map[string]interface{}{
		"quantity_on_hand":  models.NewQuantityFromDecimal(onHand),
		"reserved_quantity": models.NewQuantityFromDecimal(reserved),
	}
	if err := repo.Updates(item.ID, updates); err != nil {
		return fmt.Errorf("write tracked stock failed: %w", err)
	}
	return nil
}
