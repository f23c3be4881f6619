package tree

import (
	"github.com/Rushen88/PDM-sub000/pkg/application/services/shared"
	"github.com/Rushen88/PDM-sub000/pkg/application/services/stock"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func stockReserve(node *entities.TreeNode, quantity entities.Quantity) stock.ReserveRequest {
	return stock.ReserveRequest{
		NodeID:         node.ID,
		ProjectID:      node.ProjectID,
		NomenclatureID: node.NomenclatureID,
		Quantity:       quantity,
	}
}

// node consumptions are filed under the node ID, one line per call
func stockConsume(node *entities.TreeNode, quantity entities.Quantity, fromReserved bool) stock.ConsumeRequest {
	return stock.ConsumeRequest{
		NodeID:         node.ID,
		NomenclatureID: node.NomenclatureID,
		Quantity:       quantity,
		FromReserved:   fromReserved,
		Document:       entities.DocumentRef{Type: entities.DocNodeConsumption, ID: node.ID, LineID: shared.NewID()},
		Type:           entities.MovementWriteOff,
	}
}
