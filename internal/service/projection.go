package service

import (
	"github.com/firewood-bank/backend/internal/constants"
	"github.com/firewood-bank/backend/internal/models"
)

// 角色投影过滤
// 纯函数：在实体查询返回之后、结果交给调用方之前执行，不回写存储。
// 规则按优先级匹配：司机能力 > volunteer > admin / 持证 lead > 其余角色脱敏。

// ProjectWorkOrders 按操作者投影工单列表
func ProjectWorkOrders(orders []models.WorkOrder, actor ActorContext) []models.WorkOrder {
	result := make([]models.WorkOrder, 0, len(orders))
	for _, order := range orders {
		projected, ok := projectWorkOrder(order, actor)
		if !ok {
			continue
		}
		result = append(result, projected)
	}
	return result
}

func projectWorkOrder(order models.WorkOrder, actor ActorContext) (models.WorkOrder, bool) {
	switch {
	case actor.DriverCapable:
		if !assigneesContain(order.Assignees, actor) {
			return models.WorkOrder{}, false
		}
		order.GateCombo = ""
		order.Notes = ""
		return order, true
	case actor.Role == constants.RoleVolunteer:
		if !assigneesContain(order.Assignees, actor) {
			return models.WorkOrder{}, false
		}
		order.Telephone = ""
		order.Email = ""
		order.GateCombo = ""
		order.Notes = ""
		order.AddressLine1 = ""
		order.AddressLine2 = ""
		order.City = ""
		order.State = ""
		order.PostalCode = ""
		return order, true
	case actor.CanViewProtected():
		return order, true
	default:
		order.Telephone = ""
		order.Email = ""
		order.GateCombo = ""
		order.AddressLine1 = constants.RedactedPlaceholder
		order.AddressLine2 = constants.RedactedPlaceholder
		order.City = constants.RedactedPlaceholder
		order.State = constants.RedactedPlaceholder
		order.PostalCode = constants.RedactedPlaceholder
		return order, true
	}
}

// ProjectClients 按操作者投影客户列表
func ProjectClients(clients []models.Client, actor ActorContext) []models.Client {
	result := make([]models.Client, 0, len(clients))
	for _, client := range clients {
		result = append(result, projectClient(client, actor))
	}
	return result
}

func projectClient(client models.Client, actor ActorContext) models.Client {
	switch {
	case actor.DriverCapable:
		client.GateCombo = ""
		client.Notes = ""
		client.AddressLine1 = ""
		client.AddressLine2 = ""
		client.City = ""
		client.State = ""
		client.PostalCode = ""
		client.MailingAddress = ""
		return client
	case actor.Role == constants.RoleVolunteer:
		client.Telephone = ""
		client.Email = ""
		client.GateCombo = ""
		client.Notes = ""
		client.AddressLine1 = ""
		client.AddressLine2 = ""
		client.City = ""
		client.State = ""
		client.PostalCode = ""
		client.MailingAddress = ""
		return client
	case actor.CanViewProtected():
		return client
	default:
		client.Telephone = ""
		client.Email = ""
		client.GateCombo = ""
		client.AddressLine1 = constants.RedactedPlaceholder
		client.AddressLine2 = constants.RedactedPlaceholder
		client.City = constants.RedactedPlaceholder
		client.State = constants.RedactedPlaceholder
		client.PostalCode = constants.RedactedPlaceholder
		client.MailingAddress = constants.RedactedPlaceholder
		return client
	}
}

// ProjectDeliveryEvents 按操作者投影日历事件列表
// 司机与志愿者只看到指派给自己的事件，其余角色全量可见。
func ProjectDeliveryEvents(events []models.DeliveryEvent, actor ActorContext) []models.DeliveryEvent {
	if !actor.FieldViewRestricted() {
		return events
	}
	result := make([]models.DeliveryEvent, 0, len(events))
	for _, event := range events {
		if assigneesContain(event.AssignedUserIDs, actor) {
			result = append(result, event)
		}
	}
	return result
}

func assigneesContain(assignees models.StringArray, actor ActorContext) bool {
	for _, name := range assignees {
		if actor.MatchesUsername(name) {
			return true
		}
	}
	return false
}
