package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/application/dto"
	"github.com/Rushen88/PDM-sub000/pkg/domain/entities"
)

func sampleTree() *dto.ProjectTree {
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	root := &entities.TreeNode{ID: "n1", Name: "Pump unit", DisplayNumber: 1, Quantity: entities.Qty(1), Unit: "pcs",
		ManufacturingStatus: entities.ManufacturingNotStarted, RequiredDate: &due}
	bolt := &entities.TreeNode{ID: "n2", ParentID: "n1", Name: "Bolt M8x30", DisplayNumber: 2, Quantity: entities.Qty(12), Unit: "pcs",
		Purchased: true, PurchaseStatus: entities.PurchaseWaitingOrder, ProblemReasons: []entities.ProblemReason{entities.ProblemOrderOverdue}}
	project := &entities.Project{ID: "p1", Name: "Pump order", Status: entities.ProjectPlanning, DueDate: &due}
	return dto.NewProjectTree(project, []*entities.TreeNode{root, bolt})
}

func TestPrinter_TreeText(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatText)
	require.NoError(t, err)
	require.NoError(t, p.Tree(sampleTree()))

	out := buf.String()
	assert.Contains(t, out, "Project Pump order (p1) planning, due 2026-05-01")
	assert.Contains(t, out, "  Bolt M8x30")
	assert.Contains(t, out, "waiting_order")
	assert.Contains(t, out, "order_overdue")
}

func TestPrinter_RequirementsJSON(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, p.Requirements([]*entities.Requirement{{ID: "r1", NomenclatureID: "BOLT", ToOrder: entities.Qty(5)}}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "BOLT", decoded[0]["NomenclatureID"])
	assert.Equal(t, "5", decoded[0]["ToOrder"])
}

func TestNewPrinter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewPrinter(&bytes.Buffer{}, "html")
	assert.Error(t, err)
}
