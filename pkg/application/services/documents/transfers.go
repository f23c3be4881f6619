package documents

import (
	"fmt"

	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/events"
)

// TransferLineInput moves one item between warehouses
type TransferLineInput struct {
	NomenclatureID string
	Quantity       entities.Quantity
}

// StockTransferInput describes a new transfer
type StockTransferInput struct {
	FromWarehouseID string
	ToWarehouseID   string
	Lines           []TransferLineInput
}

// CreateStockTransfer stores a draft transfer
func (s *Service) CreateStockTransfer(sc *shared.Scope, in StockTransferInput) (*entities.StockTransfer, error) {
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, apperrors.Validation("transfer source and destination are both %s", in.FromWarehouseID)
	}
	for _, wh := range []string{in.FromWarehouseID, in.ToWarehouseID} {
		if _, err := sc.Tx.Catalog().GetWarehouse(wh); err != nil {
			return nil, err
		}
	}
	if len(in.Lines) == 0 {
		return nil, apperrors.Validation("stock transfer has no lines")
	}
	lines := make([]entities.StockTransferLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if !l.Quantity.IsPositive() {
			return nil, apperrors.Validation("transfer quantity of %s must be positive, got %s", l.NomenclatureID, l.Quantity)
		}
		lines = append(lines, entities.StockTransferLine{ID: shared.NewID(), NomenclatureID: l.NomenclatureID, Quantity: l.Quantity})
	}
	number, err := shared.NextDocumentNumber(sc, shared.StockTransferSequence)
	if err != nil {
		return nil, err
	}
	t := &entities.StockTransfer{
		ID:              shared.NewID(),
		Number:          number,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Status:          entities.StatusDraft,
		Lines:           lines,
		CreatedAt:       sc.Now,
	}
	return t, sc.Tx.Transfers().Save(t)
}

// ShipTransfer takes free stock out of the source warehouse, remembering
// which batches it drew
func (s *Service) ShipTransfer(sc *shared.Scope, id string) (*entities.StockTransfer, error) {
	t, err := sc.Tx.Transfers().Get(id)
	if err != nil {
		return nil, err
	}
	if t.Status != entities.StatusDraft {
		return nil, apperrors.Validation("stock transfer %s is %s, only drafts can be shipped", t.Number, t.Status)
	}
	for i := range t.Lines {
		line := &t.Lines[i]
		moves, err := s.stock.Consume(sc, stock.ConsumeRequest{
			NomenclatureID: line.NomenclatureID,
			Quantity:       line.Quantity,
			WarehouseID:    t.FromWarehouseID,
			Document:       entities.DocumentRef{Type: entities.DocStockTransfer, ID: t.ID, LineID: line.ID},
			Type:           entities.MovementTransferOut,
		})
		if err != nil {
			return nil, fmt.Errorf("stock transfer %s line %s: %w", t.Number, line.ID, err)
		}
		line.Draws = nil
		for _, m := range moves {
			line.Draws = append(line.Draws, m.BatchDraws...)
		}
	}
	t.Status = entities.StatusShipped
	t.ShippedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Transfers().Save(t); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent, transferRef(t), entities.StatusDraft, t.Status)
	return t, nil
}

// ReceiveTransfer books shipped stock into the destination warehouse,
// recreating the drawn batches with their original receipt dates
func (s *Service) ReceiveTransfer(sc *shared.Scope, id string) (*entities.StockTransfer, error) {
	t, err := sc.Tx.Transfers().Get(id)
	if err != nil {
		return nil, err
	}
	if t.Status != entities.StatusShipped {
		return nil, apperrors.Validation("stock transfer %s is %s, only shipped transfers can be received", t.Number, t.Status)
	}
	for _, line := range t.Lines {
		if _, err := s.stock.Receive(sc, stock.ReceiveRequest{
			WarehouseID:    t.ToWarehouseID,
			NomenclatureID: line.NomenclatureID,
			Quantity:       line.Quantity,
			ReceiptDate:    sc.Now,
			Document:       entities.DocumentRef{Type: entities.DocStockTransfer, ID: t.ID, LineID: line.ID},
			Type:           entities.MovementTransferIn,
			Batches:        line.Draws,
		}); err != nil {
			return nil, fmt.Errorf("stock transfer %s line %s: %w", t.Number, line.ID, err)
		}
	}
	t.Status = entities.StatusReceived
	t.ReceivedAt = entities.DatePtr(sc.Now)
	if err := sc.Tx.Transfers().Save(t); err != nil {
		return nil, err
	}
	s.recordTransition(sc, events.DocumentConfirmedEvent, transferRef(t), entities.StatusShipped, t.Status)
	return t, nil
}

func transferRef(t *entities.StockTransfer) entities.DocumentRef {
	return entities.DocumentRef{Type: entities.DocStockTransfer, ID: t.ID}
}
