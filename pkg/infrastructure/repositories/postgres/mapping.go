package postgres

import (
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func toCategoryModel(c *entities.Category) *categoryModel {
	return &categoryModel{ID: c.ID, Name: c.Name, IsPurchased: c.IsPurchased, AllowedChildCategoryIDs: c.AllowedChildCategoryIDs}
}

func (m *categoryModel) entity() *entities.Category {
	return &entities.Category{ID: m.ID, Name: m.Name, IsPurchased: m.IsPurchased, AllowedChildCategoryIDs: []string(m.AllowedChildCategoryIDs)}
}

func toNomenclatureModel(n *entities.Nomenclature) *nomenclatureModel {
	return &nomenclatureModel{
		ID: n.ID, Code: n.Code, Name: n.Name, CategoryID: n.CategoryID, Unit: n.Unit,
		DefaultSupplierID: n.DefaultSupplierID, DefaultContractorID: n.DefaultContractorID,
		ManufacturingDays: n.ManufacturingDays, SafetyStock: n.SafetyStock,
	}
}

func (m *nomenclatureModel) entity() *entities.Nomenclature {
	return &entities.Nomenclature{
		ID: m.ID, Code: m.Code, Name: m.Name, CategoryID: m.CategoryID, Unit: m.Unit,
		DefaultSupplierID: m.DefaultSupplierID, DefaultContractorID: m.DefaultContractorID,
		ManufacturingDays: m.ManufacturingDays, SafetyStock: m.SafetyStock,
	}
}

func toTemplateModel(t *entities.BOMTemplate) *templateModel {
	return &templateModel{ID: t.ID, NomenclatureID: t.NomenclatureID, Version: t.Version, Status: string(t.Status), Active: t.Active, Lines: t.Lines}
}

func (m *templateModel) entity() *entities.BOMTemplate {
	return &entities.BOMTemplate{
		ID: m.ID, NomenclatureID: m.NomenclatureID, Version: m.Version,
		Status: entities.TemplateStatus(m.Status), Active: m.Active, Lines: []entities.BOMLine(m.Lines),
	}
}

func toProjectModel(p *entities.Project) *projectModel {
	return &projectModel{ID: p.ID, Name: p.Name, Status: string(p.Status), DueDate: p.DueDate, RootNodeID: p.RootNodeID, CompletedAt: p.CompletedAt, CreatedAt: p.CreatedAt}
}

func (m *projectModel) entity() *entities.Project {
	return &entities.Project{ID: m.ID, Name: m.Name, Status: entities.ProjectStatus(m.Status), DueDate: m.DueDate, RootNodeID: m.RootNodeID, CompletedAt: m.CompletedAt, CreatedAt: m.CreatedAt}
}

func toNodeModel(n *entities.TreeNode) *nodeModel {
	return &nodeModel{
		ID: n.ID, ProjectID: n.ProjectID, ParentID: n.ParentID, NomenclatureID: n.NomenclatureID,
		CategoryID: n.CategoryID, Name: n.Name, DisplayNumber: n.DisplayNumber,
		Quantity: n.Quantity, Unit: n.Unit, Purchased: n.Purchased,
		SourceKind: string(n.Source.Kind), SourceID: n.Source.ID, ResponsibleID: n.ResponsibleID,
		ManufacturingStatus: string(n.ManufacturingStatus), PurchaseStatus: string(n.PurchaseStatus),
		PlannedStart: n.PlannedStart, PlannedEnd: n.PlannedEnd, ActualStart: n.ActualStart, ActualEnd: n.ActualEnd,
		RequiredDate: n.RequiredDate, OrderByDate: n.OrderByDate, OrderedAt: n.OrderedAt,
		ExpectedDeliveryDate: n.ExpectedDeliveryDate,
		Problem:              n.Problem, ProblemReasons: n.ProblemReasons, LastProblemReason: n.LastProblemReason,
		SplitFromID: n.SplitFromID, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt,
	}
}

func (m *nodeModel) entity() *entities.TreeNode {
	return &entities.TreeNode{
		ID: m.ID, ProjectID: m.ProjectID, ParentID: m.ParentID, NomenclatureID: m.NomenclatureID,
		CategoryID: m.CategoryID, Name: m.Name, DisplayNumber: m.DisplayNumber,
		Quantity: m.Quantity, Unit: m.Unit, Purchased: m.Purchased,
		Source:        entities.CounterpartyRef{Kind: entities.CounterpartyKind(m.SourceKind), ID: m.SourceID},
		ResponsibleID: m.ResponsibleID,
		ManufacturingStatus: entities.ManufacturingStatus(m.ManufacturingStatus),
		PurchaseStatus:      entities.PurchaseStatus(m.PurchaseStatus),
		PlannedStart: m.PlannedStart, PlannedEnd: m.PlannedEnd, ActualStart: m.ActualStart, ActualEnd: m.ActualEnd,
		RequiredDate: m.RequiredDate, OrderByDate: m.OrderByDate, OrderedAt: m.OrderedAt,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		Problem:              m.Problem, ProblemReasons: []entities.ProblemReason(m.ProblemReasons), LastProblemReason: m.LastProblemReason,
		SplitFromID: m.SplitFromID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func toRequirementModel(r *entities.Requirement) *requirementModel {
	return &requirementModel{
		ID: r.ID, NomenclatureID: r.NomenclatureID, ProjectID: r.ProjectID, NodeID: r.NodeID,
		TotalRequired: r.TotalRequired, TotalAvailable: r.TotalAvailable, TotalReserved: r.TotalReserved,
		ReservedForNode: r.ReservedForNode, TotalInOrder: r.TotalInOrder, SafetyStock: r.SafetyStock, ToOrder: r.ToOrder,
		Status: string(r.Status), PurchaseOrderID: r.PurchaseOrderID, OrderByDate: r.OrderByDate,
		Problem: r.Problem, ProblemReasons: r.ProblemReasons,
		Deleted: r.Deleted, DeletedAt: r.DeletedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (m *requirementModel) entity() *entities.Requirement {
	return &entities.Requirement{
		ID: m.ID, NomenclatureID: m.NomenclatureID, ProjectID: m.ProjectID, NodeID: m.NodeID,
		TotalRequired: m.TotalRequired, TotalAvailable: m.TotalAvailable, TotalReserved: m.TotalReserved,
		ReservedForNode: m.ReservedForNode, TotalInOrder: m.TotalInOrder, SafetyStock: m.SafetyStock, ToOrder: m.ToOrder,
		Status: entities.PurchaseStatus(m.Status), PurchaseOrderID: m.PurchaseOrderID, OrderByDate: m.OrderByDate,
		Problem: m.Problem, ProblemReasons: []entities.ProblemReason(m.ProblemReasons),
		Deleted: m.Deleted, DeletedAt: m.DeletedAt, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func toPositionModel(p *entities.StockPosition) *positionModel {
	return &positionModel{ID: p.ID, WarehouseID: p.WarehouseID, NomenclatureID: p.NomenclatureID, Quantity: p.Quantity, ReservedQuantity: p.ReservedQuantity, UpdatedAt: p.UpdatedAt}
}

func (m *positionModel) entity() *entities.StockPosition {
	return &entities.StockPosition{ID: m.ID, WarehouseID: m.WarehouseID, NomenclatureID: m.NomenclatureID, Quantity: m.Quantity, ReservedQuantity: m.ReservedQuantity, UpdatedAt: m.UpdatedAt}
}

func toBatchModel(b *entities.StockBatch) *batchModel {
	return &batchModel{
		ID: b.ID, PositionID: b.PositionID, ReceiptDate: b.ReceiptDate,
		InitialQuantity: b.InitialQuantity, CurrentQuantity: b.CurrentQuantity,
		DocType: string(b.Document.Type), DocID: b.Document.ID, DocLineID: b.Document.LineID,
	}
}

func (m *batchModel) entity() *entities.StockBatch {
	return &entities.StockBatch{
		ID: m.ID, PositionID: m.PositionID, ReceiptDate: m.ReceiptDate,
		InitialQuantity: m.InitialQuantity, CurrentQuantity: m.CurrentQuantity,
		Document: entities.DocumentRef{Type: entities.DocumentType(m.DocType), ID: m.DocID, LineID: m.DocLineID},
	}
}

func toReservationModel(r *entities.StockReservation) *reservationModel {
	return &reservationModel{
		ID: r.ID, PositionID: r.PositionID, NodeID: r.NodeID, ProjectID: r.ProjectID, NomenclatureID: r.NomenclatureID,
		Quantity: r.Quantity, ConsumedQuantity: r.ConsumedQuantity, Status: string(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (m *reservationModel) entity() *entities.StockReservation {
	return &entities.StockReservation{
		ID: m.ID, PositionID: m.PositionID, NodeID: m.NodeID, ProjectID: m.ProjectID, NomenclatureID: m.NomenclatureID,
		Quantity: m.Quantity, ConsumedQuantity: m.ConsumedQuantity, Status: entities.ReservationStatus(m.Status),
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func toMovementModel(mv *entities.StockMovement) *movementModel {
	return &movementModel{
		ID: mv.ID, PositionID: mv.PositionID, WarehouseID: mv.WarehouseID, NomenclatureID: mv.NomenclatureID,
		Type: string(mv.Type), Quantity: mv.Quantity, BalanceAfter: mv.BalanceAfter,
		DocType: string(mv.Document.Type), DocID: mv.Document.ID, DocLineID: mv.Document.LineID,
		NodeID: mv.NodeID, ReservationID: mv.ReservationID, ReservedConsumed: mv.ReservedConsumed,
		BatchDraws: mv.BatchDraws, ReversesID: mv.ReversesID, CreatedAt: mv.CreatedAt,
	}
}

func (m *movementModel) entity() *entities.StockMovement {
	return &entities.StockMovement{
		ID: m.ID, PositionID: m.PositionID, WarehouseID: m.WarehouseID, NomenclatureID: m.NomenclatureID,
		Type: entities.MovementType(m.Type), Quantity: m.Quantity, BalanceAfter: m.BalanceAfter,
		Document: entities.DocumentRef{Type: entities.DocumentType(m.DocType), ID: m.DocID, LineID: m.DocLineID},
		NodeID:   m.NodeID, ReservationID: m.ReservationID, ReservedConsumed: m.ReservedConsumed,
		BatchDraws: []entities.BatchDraw(m.BatchDraws), ReversesID: m.ReversesID, CreatedAt: m.CreatedAt,
	}
}

func toOrderModel(o *entities.PurchaseOrder) *orderModel {
	return &orderModel{
		ID: o.ID, Number: o.Number, SupplierID: o.SupplierID, Status: string(o.Status),
		OrderDate: o.OrderDate, ExpectedDeliveryDate: o.ExpectedDeliveryDate, Lines: o.Lines,
		ConfirmedAt: o.ConfirmedAt, Deleted: o.Deleted, DeletedAt: o.DeletedAt, CreatedAt: o.CreatedAt,
	}
}

func (m *orderModel) entity() *entities.PurchaseOrder {
	return &entities.PurchaseOrder{
		ID: m.ID, Number: m.Number, SupplierID: m.SupplierID, Status: entities.DocumentStatus(m.Status),
		OrderDate: m.OrderDate, ExpectedDeliveryDate: m.ExpectedDeliveryDate, Lines: []entities.PurchaseOrderLine(m.Lines),
		ConfirmedAt: m.ConfirmedAt, Deleted: m.Deleted, DeletedAt: m.DeletedAt, CreatedAt: m.CreatedAt,
	}
}

func toReceiptModel(r *entities.GoodsReceipt) *receiptModel {
	return &receiptModel{
		ID: r.ID, Number: r.Number, OrderID: r.OrderID, WarehouseID: r.WarehouseID, ReceiptDate: r.ReceiptDate,
		Status: string(r.Status), Lines: r.Lines, ConfirmedAt: r.ConfirmedAt, CreatedAt: r.CreatedAt,
	}
}

func (m *receiptModel) entity() *entities.GoodsReceipt {
	return &entities.GoodsReceipt{
		ID: m.ID, Number: m.Number, OrderID: m.OrderID, WarehouseID: m.WarehouseID, ReceiptDate: m.ReceiptDate,
		Status: entities.DocumentStatus(m.Status), Lines: []entities.GoodsReceiptLine(m.Lines), ConfirmedAt: m.ConfirmedAt, CreatedAt: m.CreatedAt,
	}
}

func toWriteOffModel(w *entities.ContractorWriteOff) *writeOffModel {
	return &writeOffModel{
		ID: w.ID, Number: w.Number, ContractorID: w.ContractorID, WarehouseID: w.WarehouseID, TargetNodeID: w.TargetNodeID,
		Status: string(w.Status), Lines: w.Lines, ConfirmedAt: w.ConfirmedAt, CreatedAt: w.CreatedAt,
	}
}

func (m *writeOffModel) entity() *entities.ContractorWriteOff {
	return &entities.ContractorWriteOff{
		ID: m.ID, Number: m.Number, ContractorID: m.ContractorID, WarehouseID: m.WarehouseID, TargetNodeID: m.TargetNodeID,
		Status: entities.DocumentStatus(m.Status), Lines: []entities.ContractorWriteOffLine(m.Lines), ConfirmedAt: m.ConfirmedAt, CreatedAt: m.CreatedAt,
	}
}

func toContractorReceiptModel(r *entities.ContractorReceipt) *contractorReceiptModel {
	return &contractorReceiptModel{
		ID: r.ID, Number: r.Number, ContractorID: r.ContractorID, WarehouseID: r.WarehouseID, ReceiptDate: r.ReceiptDate,
		Status: string(r.Status), Lines: r.Lines, ConfirmedAt: r.ConfirmedAt, CreatedAt: r.CreatedAt,
	}
}

func (m *contractorReceiptModel) entity() *entities.ContractorReceipt {
	return &entities.ContractorReceipt{
		ID: m.ID, Number: m.Number, ContractorID: m.ContractorID, WarehouseID: m.WarehouseID, ReceiptDate: m.ReceiptDate,
		Status: entities.DocumentStatus(m.Status), Lines: []entities.ContractorReceiptLine(m.Lines), ConfirmedAt: m.ConfirmedAt, CreatedAt: m.CreatedAt,
	}
}

func toTransferModel(t *entities.StockTransfer) *transferModel {
	return &transferModel{
		ID: t.ID, Number: t.Number, FromWarehouseID: t.FromWarehouseID, ToWarehouseID: t.ToWarehouseID,
		Status: string(t.Status), Lines: t.Lines, ShippedAt: t.ShippedAt, ReceivedAt: t.ReceivedAt, CreatedAt: t.CreatedAt,
	}
}

func (m *transferModel) entity() *entities.StockTransfer {
	return &entities.StockTransfer{
		ID: m.ID, Number: m.Number, FromWarehouseID: m.FromWarehouseID, ToWarehouseID: m.ToWarehouseID,
		Status: entities.DocumentStatus(m.Status), Lines: []entities.StockTransferLine(m.Lines),
		ShippedAt: m.ShippedAt, ReceivedAt: m.ReceivedAt, CreatedAt: m.CreatedAt,
	}
}

func toCountModel(c *entities.InventoryCount) *countModel {
	return &countModel{ID: c.ID, Number: c.Number, WarehouseID: c.WarehouseID, Status: string(c.Status), Lines: c.Lines, CompletedAt: c.CompletedAt, CreatedAt: c.CreatedAt}
}

func (m *countModel) entity() *entities.InventoryCount {
	return &entities.InventoryCount{
		ID: m.ID, Number: m.Number, WarehouseID: m.WarehouseID, Status: entities.DocumentStatus(m.Status),
		Lines: []entities.InventoryCountLine(m.Lines), CompletedAt: m.CompletedAt, CreatedAt: m.CreatedAt,
	}
}
