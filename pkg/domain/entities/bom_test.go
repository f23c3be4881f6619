package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBOMLine_Validation(t *testing.T) {
	line, err := NewBOMLine("CHILD", Qty(2), "pcs", 10)
	require.NoError(t, err)
	assert.True(t, line.Quantity.Equal(Qty(2)))

	testCases := []struct {
		name        string
		childID     string
		quantity    Quantity
		position    int
		expectError string
	}{
		{"empty child", "", Qty(1), 1, "child nomenclature cannot be empty"},
		{"zero quantity", "CHILD", Qty(0), 1, "quantity per must be positive, got 0"},
		{"negative quantity", "CHILD", Qty(-1), 1, "quantity per must be positive, got -1"},
		{"zero position", "CHILD", Qty(1), 0, "position must be positive, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBOMLine(tc.childID, tc.quantity, "pcs", tc.position)
			require.Error(t, err)
			assert.Equal(t, tc.expectError, err.Error())
		})
	}
}

func TestBOMTemplate_Validation(t *testing.T) {
	lines := []BOMLine{
		{ChildNomenclatureID: "WHEEL", Quantity: Qty(4), Unit: "pcs", Position: 1},
		{ChildNomenclatureID: "FRAME", Quantity: Qty(1), Unit: "pcs", Position: 2},
	}
	tpl, err := NewBOMTemplate("T1", "CART", 1, lines)
	require.NoError(t, err)
	assert.Equal(t, TemplateDraft, tpl.Status)
	assert.False(t, tpl.Active)

	lines[0].ChildNomenclatureID = "CHANGED"
	assert.Equal(t, "WHEEL", tpl.Lines[0].ChildNomenclatureID, "template must own its lines")

	_, err = NewBOMTemplate("T2", "CART", 1, []BOMLine{{ChildNomenclatureID: "CART", Quantity: Qty(1), Position: 1}})
	assert.EqualError(t, err, "template T2 lists its own root CART as a child")

	_, err = NewBOMTemplate("T3", "CART", 1, []BOMLine{
		{ChildNomenclatureID: "WHEEL", Quantity: Qty(1), Position: 1},
		{ChildNomenclatureID: "WHEEL", Quantity: Qty(2), Position: 2},
	})
	assert.EqualError(t, err, "template T3 repeats child WHEEL")

	clone := tpl.Clone()
	clone.Lines[1].Quantity = Qty(9)
	assert.True(t, tpl.Lines[1].Quantity.Equal(Qty(1)))
}
