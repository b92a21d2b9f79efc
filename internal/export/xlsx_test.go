package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/valuation-api/internal/model"
)

func TestWriteLeadsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		{
			ID:           "l-1",
			Email:        "owner@example.com",
			Name:         "Kim Jiwoo",
			ValuationID:  "v-1",
			Status:       model.LeadStatusSynced,
			SalesforceID: "00Q5e00000AbCdEfGH",
			CreatedAt:    created,
		},
		{
			ID:        "l-2",
			Email:     "other@example.com",
			Status:    model.LeadStatusNew,
			CreatedAt: created,
		},
	}

	require.NoError(t, WriteLeadsXLSX(path, leads))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet["Leads"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Email", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "owner@example.com", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "synced", sheet.Rows[1].Cells[4].String())
	assert.Equal(t, "00Q5e00000AbCdEfGH", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "new", sheet.Rows[2].Cells[4].String())
	assert.Empty(t, sheet.Rows[2].Cells[5].String())
}

func TestWriteLeadsXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, WriteLeadsXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheet["Leads"].Rows, 1)
}
