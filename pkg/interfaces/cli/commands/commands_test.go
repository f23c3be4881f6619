package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
)

var plantDir = filepath.Join("..", "..", "..", "infrastructure", "repositories", "csv", "testdata", "plant")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PDM_STORAGE_DRIVER", "memory")
	t.Setenv("PDM_LOG_LEVEL", "error")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeed_PrintsImportSummary(t *testing.T) {
	out, err := run(t, "seed", plantDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 5 items, 2 templates, 2 opening counts")
}

func TestProjectCreate_WithSync(t *testing.T) {
	out, err := run(t, "--data", plantDir, "project", "create",
		"--name", "Pump order", "--root", "PUMP", "--qty", "2", "--due", "2026-06-01", "--sync")
	require.NoError(t, err)

	assert.Contains(t, out, "Project Pump order")
	assert.Contains(t, out, "due 2026-06-01")
	assert.Contains(t, out, "Welded housing")
	assert.Contains(t, out, "Steel sheet 3mm")
	assert.Contains(t, out, "3 created, 0 updated, 0 deleted")
	assert.Contains(t, out, "MOTOR")
}

func TestProjectCreate_RejectsBadDate(t *testing.T) {
	_, err := run(t, "--data", plantDir, "project", "create", "--name", "x", "--root", "PUMP", "--due", "01.06.2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
}

func TestProjectTree_UnknownProject(t *testing.T) {
	_, err := run(t, "--data", plantDir, "project", "tree", "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestStockPositions_ByWarehouseAndItem(t *testing.T) {
	out, err := run(t, "--data", plantDir, "stock", "positions", "--warehouse", "WH-MAIN")
	require.NoError(t, err)
	assert.Contains(t, out, "BOLT")
	assert.Contains(t, out, "STEEL")
	assert.NotContains(t, out, "MOTOR")

	out, err = run(t, "--data", plantDir, "stock", "positions", "MOTOR")
	require.NoError(t, err)
	assert.Contains(t, out, "WH-SPARE")

	_, err = run(t, "--data", plantDir, "stock", "positions")
	assert.Error(t, err)
}

func TestMigrate_NeedsPostgres(t *testing.T) {
	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver=postgres")
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "project", "list")
	assert.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	q, err := parseQuantity("14.5")
	require.NoError(t, err)
	assert.Equal(t, "14.5", q.String())

	_, err = parseQuantity("lots")
	assert.Error(t, err)
}
