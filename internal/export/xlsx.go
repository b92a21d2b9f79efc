// Package export writes captured leads to spreadsheet files for the
// marketing team.
package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/valuation-api/internal/model"
)

var leadHeader = []string{
	"ID", "Email", "Name", "Valuation ID", "Status", "Salesforce ID", "Created At",
}

// WriteLeadsXLSX writes leads to an XLSX workbook at the given path.
func WriteLeadsXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeader {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.ID)
		row.AddCell().SetString(l.Email)
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.ValuationID)
		row.AddCell().SetString(string(l.Status))
		row.AddCell().SetString(l.SalesforceID)
		row.AddCell().SetString(l.CreatedAt.Format(time.RFC3339))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	return nil
}
